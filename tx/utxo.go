package tx

// UTXO is an unspent output together with the outpoint that identifies it.
type UTXO struct {
	OutPoint OutPoint
	Output   Output
}

// Value returns the output value in satoshis.
func (u UTXO) Value() uint64 { return u.Output.Value }

// UTXOs returns the outputs of t for which match reports true, keyed by
// their outpoints. A nil match selects every output.
func (t *Transaction) UTXOs(match func(Output) bool) []UTXO {
	id := t.TxID()
	var out []UTXO
	for i, o := range t.outputs {
		if match != nil && !match(o) {
			continue
		}
		out = append(out, UTXO{
			OutPoint: OutPoint{Hash: id, Index: uint32(i)},
			Output:   o.Clone(),
		})
	}
	return out
}

// SumUTXOs returns the total value of utxos.
func SumUTXOs(utxos []UTXO) uint64 {
	var total uint64
	for _, u := range utxos {
		total += u.Output.Value
	}
	return total
}
