package script

import "fmt"

// Opcode is one byte of the script language. The set of meaningful values
// is closed; bytes with no entry in the table parse as an invalid op.
type Opcode byte

// Push and constant opcodes.
const (
	Op0         Opcode = 0x00
	OpFALSE     Opcode = 0x00
	OpDATA1     Opcode = 0x01
	OpDATA20    Opcode = 0x14
	OpDATA33    Opcode = 0x21
	OpDATA75    Opcode = 0x4b
	OpPUSHDATA1 Opcode = 0x4c
	OpPUSHDATA2 Opcode = 0x4d
	OpPUSHDATA4 Opcode = 0x4e
	Op1NEGATE   Opcode = 0x4f
	OpRESERVED  Opcode = 0x50
	Op1         Opcode = 0x51
	OpTRUE      Opcode = 0x51
	Op2         Opcode = 0x52
	Op3         Opcode = 0x53
	Op4         Opcode = 0x54
	Op5         Opcode = 0x55
	Op6         Opcode = 0x56
	Op7         Opcode = 0x57
	Op8         Opcode = 0x58
	Op9         Opcode = 0x59
	Op10        Opcode = 0x5a
	Op11        Opcode = 0x5b
	Op12        Opcode = 0x5c
	Op13        Opcode = 0x5d
	Op14        Opcode = 0x5e
	Op15        Opcode = 0x5f
	Op16        Opcode = 0x60
)

// Flow control.
const (
	OpNOP      Opcode = 0x61
	OpVER      Opcode = 0x62
	OpIF       Opcode = 0x63
	OpNOTIF    Opcode = 0x64
	OpVERIF    Opcode = 0x65
	OpVERNOTIF Opcode = 0x66
	OpELSE     Opcode = 0x67
	OpENDIF    Opcode = 0x68
	OpVERIFY   Opcode = 0x69
	OpRETURN   Opcode = 0x6a
)

// Stack manipulation.
const (
	OpTOALTSTACK   Opcode = 0x6b
	OpFROMALTSTACK Opcode = 0x6c
	Op2DROP        Opcode = 0x6d
	Op2DUP         Opcode = 0x6e
	Op3DUP         Opcode = 0x6f
	Op2OVER        Opcode = 0x70
	Op2ROT         Opcode = 0x71
	Op2SWAP        Opcode = 0x72
	OpIFDUP        Opcode = 0x73
	OpDEPTH        Opcode = 0x74
	OpDROP         Opcode = 0x75
	OpDUP          Opcode = 0x76
	OpNIP          Opcode = 0x77
	OpOVER         Opcode = 0x78
	OpPICK         Opcode = 0x79
	OpROLL         Opcode = 0x7a
	OpROT          Opcode = 0x7b
	OpSWAP         Opcode = 0x7c
	OpTUCK         Opcode = 0x7d
)

// Splice and bitwise logic.
const (
	OpCAT         Opcode = 0x7e
	OpSPLIT       Opcode = 0x7f
	OpNUM2BIN     Opcode = 0x80
	OpBIN2NUM     Opcode = 0x81
	OpSIZE        Opcode = 0x82
	OpINVERT      Opcode = 0x83
	OpAND         Opcode = 0x84
	OpOR          Opcode = 0x85
	OpXOR         Opcode = 0x86
	OpEQUAL       Opcode = 0x87
	OpEQUALVERIFY Opcode = 0x88
	OpRESERVED1   Opcode = 0x89
	OpRESERVED2   Opcode = 0x8a
)

// Arithmetic.
const (
	Op1ADD               Opcode = 0x8b
	Op1SUB               Opcode = 0x8c
	Op2MUL               Opcode = 0x8d
	Op2DIV               Opcode = 0x8e
	OpNEGATE             Opcode = 0x8f
	OpABS                Opcode = 0x90
	OpNOT                Opcode = 0x91
	Op0NOTEQUAL          Opcode = 0x92
	OpADD                Opcode = 0x93
	OpSUB                Opcode = 0x94
	OpMUL                Opcode = 0x95
	OpDIV                Opcode = 0x96
	OpMOD                Opcode = 0x97
	OpLSHIFT             Opcode = 0x98
	OpRSHIFT             Opcode = 0x99
	OpBOOLAND            Opcode = 0x9a
	OpBOOLOR             Opcode = 0x9b
	OpNUMEQUAL           Opcode = 0x9c
	OpNUMEQUALVERIFY     Opcode = 0x9d
	OpNUMNOTEQUAL        Opcode = 0x9e
	OpLESSTHAN           Opcode = 0x9f
	OpGREATERTHAN        Opcode = 0xa0
	OpLESSTHANOREQUAL    Opcode = 0xa1
	OpGREATERTHANOREQUAL Opcode = 0xa2
	OpMIN                Opcode = 0xa3
	OpMAX                Opcode = 0xa4
	OpWITHIN             Opcode = 0xa5
)

// Crypto, locktime and expansion.
const (
	OpRIPEMD160           Opcode = 0xa6
	OpSHA1                Opcode = 0xa7
	OpSHA256              Opcode = 0xa8
	OpHASH160             Opcode = 0xa9
	OpHASH256             Opcode = 0xaa
	OpCODESEPARATOR       Opcode = 0xab
	OpCHECKSIG            Opcode = 0xac
	OpCHECKSIGVERIFY      Opcode = 0xad
	OpCHECKMULTISIG       Opcode = 0xae
	OpCHECKMULTISIGVERIFY Opcode = 0xaf
	OpNOP1                Opcode = 0xb0
	OpCHECKLOCKTIMEVERIFY Opcode = 0xb1
	OpCHECKSEQUENCEVERIFY Opcode = 0xb2
	OpNOP4                Opcode = 0xb3
	OpNOP5                Opcode = 0xb4
	OpNOP6                Opcode = 0xb5
	OpNOP7                Opcode = 0xb6
	OpNOP8                Opcode = 0xb7
	OpNOP9                Opcode = 0xb8
	OpNOP10               Opcode = 0xb9
	OpCHECKDATASIG        Opcode = 0xba
	OpCHECKDATASIGVERIFY  Opcode = 0xbb
)

// opcodeNames holds the mnemonic of every defined opcode. An empty entry
// means the byte has no meaning.
var opcodeNames = func() [256]string {
	var n [256]string
	n[Op0] = "OP_0"
	for i := OpDATA1; i <= OpDATA75; i++ {
		n[i] = fmt.Sprintf("OP_DATA_%d", int(i))
	}
	n[OpPUSHDATA1] = "OP_PUSHDATA1"
	n[OpPUSHDATA2] = "OP_PUSHDATA2"
	n[OpPUSHDATA4] = "OP_PUSHDATA4"
	n[Op1NEGATE] = "OP_1NEGATE"
	n[OpRESERVED] = "OP_RESERVED"
	for i := Op1; i <= Op16; i++ {
		n[i] = fmt.Sprintf("OP_%d", int(i-Op1)+1)
	}
	named := map[Opcode]string{
		OpNOP: "OP_NOP", OpVER: "OP_VER", OpIF: "OP_IF", OpNOTIF: "OP_NOTIF",
		OpVERIF: "OP_VERIF", OpVERNOTIF: "OP_VERNOTIF", OpELSE: "OP_ELSE",
		OpENDIF: "OP_ENDIF", OpVERIFY: "OP_VERIFY", OpRETURN: "OP_RETURN",
		OpTOALTSTACK: "OP_TOALTSTACK", OpFROMALTSTACK: "OP_FROMALTSTACK",
		Op2DROP: "OP_2DROP", Op2DUP: "OP_2DUP", Op3DUP: "OP_3DUP", Op2OVER: "OP_2OVER",
		Op2ROT: "OP_2ROT", Op2SWAP: "OP_2SWAP", OpIFDUP: "OP_IFDUP", OpDEPTH: "OP_DEPTH",
		OpDROP: "OP_DROP", OpDUP: "OP_DUP", OpNIP: "OP_NIP", OpOVER: "OP_OVER",
		OpPICK: "OP_PICK", OpROLL: "OP_ROLL", OpROT: "OP_ROT", OpSWAP: "OP_SWAP",
		OpTUCK: "OP_TUCK", OpCAT: "OP_CAT", OpSPLIT: "OP_SPLIT", OpNUM2BIN: "OP_NUM2BIN",
		OpBIN2NUM: "OP_BIN2NUM", OpSIZE: "OP_SIZE", OpINVERT: "OP_INVERT", OpAND: "OP_AND",
		OpOR: "OP_OR", OpXOR: "OP_XOR", OpEQUAL: "OP_EQUAL", OpEQUALVERIFY: "OP_EQUALVERIFY",
		OpRESERVED1: "OP_RESERVED1", OpRESERVED2: "OP_RESERVED2",
		Op1ADD: "OP_1ADD", Op1SUB: "OP_1SUB", Op2MUL: "OP_2MUL", Op2DIV: "OP_2DIV",
		OpNEGATE: "OP_NEGATE", OpABS: "OP_ABS", OpNOT: "OP_NOT", Op0NOTEQUAL: "OP_0NOTEQUAL",
		OpADD: "OP_ADD", OpSUB: "OP_SUB", OpMUL: "OP_MUL", OpDIV: "OP_DIV", OpMOD: "OP_MOD",
		OpLSHIFT: "OP_LSHIFT", OpRSHIFT: "OP_RSHIFT", OpBOOLAND: "OP_BOOLAND",
		OpBOOLOR: "OP_BOOLOR", OpNUMEQUAL: "OP_NUMEQUAL", OpNUMEQUALVERIFY: "OP_NUMEQUALVERIFY",
		OpNUMNOTEQUAL: "OP_NUMNOTEQUAL", OpLESSTHAN: "OP_LESSTHAN",
		OpGREATERTHAN: "OP_GREATERTHAN", OpLESSTHANOREQUAL: "OP_LESSTHANOREQUAL",
		OpGREATERTHANOREQUAL: "OP_GREATERTHANOREQUAL", OpMIN: "OP_MIN", OpMAX: "OP_MAX",
		OpWITHIN: "OP_WITHIN", OpRIPEMD160: "OP_RIPEMD160", OpSHA1: "OP_SHA1",
		OpSHA256: "OP_SHA256", OpHASH160: "OP_HASH160", OpHASH256: "OP_HASH256",
		OpCODESEPARATOR: "OP_CODESEPARATOR", OpCHECKSIG: "OP_CHECKSIG",
		OpCHECKSIGVERIFY: "OP_CHECKSIGVERIFY", OpCHECKMULTISIG: "OP_CHECKMULTISIG",
		OpCHECKMULTISIGVERIFY: "OP_CHECKMULTISIGVERIFY", OpNOP1: "OP_NOP1",
		OpCHECKLOCKTIMEVERIFY: "OP_CHECKLOCKTIMEVERIFY",
		OpCHECKSEQUENCEVERIFY: "OP_CHECKSEQUENCEVERIFY", OpNOP4: "OP_NOP4",
		OpNOP5: "OP_NOP5", OpNOP6: "OP_NOP6", OpNOP7: "OP_NOP7", OpNOP8: "OP_NOP8",
		OpNOP9: "OP_NOP9", OpNOP10: "OP_NOP10", OpCHECKDATASIG: "OP_CHECKDATASIG",
		OpCHECKDATASIGVERIFY: "OP_CHECKDATASIGVERIFY",
	}
	for op, name := range named {
		n[op] = name
	}
	return n
}()

// String returns the opcode mnemonic, or OP_UNKNOWN<n> for undefined bytes.
func (o Opcode) String() string {
	if name := opcodeNames[o]; name != "" {
		return name
	}
	return fmt.Sprintf("OP_UNKNOWN%d", byte(o))
}

// IsDefined reports whether o has an enumerated meaning.
func (o Opcode) IsDefined() bool {
	return opcodeNames[o] != ""
}

// IsDisabled reports whether o is one of the frozen opcodes that fail
// unconditionally, even inside an unexecuted branch.
func (o Opcode) IsDisabled() bool {
	switch o {
	case OpINVERT, Op2MUL, Op2DIV, OpMUL, OpLSHIFT, OpRSHIFT:
		return true
	}
	return false
}

// IsPushCode reports whether o only pushes data: OP_0, direct pushes,
// PUSHDATA1/2/4, OP_1NEGATE and OP_1..OP_16.
func (o Opcode) IsPushCode() bool {
	return o <= Op16 && o != OpRESERVED
}

// IsSmallInt reports whether o is OP_0 or OP_1..OP_16.
func (o Opcode) IsSmallInt() bool {
	return o == Op0 || (o >= Op1 && o <= Op16)
}

// SmallInt returns the value pushed by OP_0 or OP_1..OP_16.
func (o Opcode) SmallInt() int {
	if o == Op0 {
		return 0
	}
	return int(o-Op1) + 1
}

// SmallIntOpcode returns the opcode pushing n, for 0 <= n <= 16.
func SmallIntOpcode(n int) Opcode {
	if n == 0 {
		return Op0
	}
	return Op1 + Opcode(n-1)
}
