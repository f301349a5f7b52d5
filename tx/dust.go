package tx

import (
	"fmt"

	"github.com/bitfsorg/libtrade-go/script"
)

// DustThreshold is the smallest output value the wallet will emit, in
// satoshis.
const DustThreshold uint64 = 546

// IsDust reports whether out is below threshold. Unspendable data outputs
// carry no value and are never dust.
func IsDust(out Output, threshold uint64) bool {
	if script.IsReturnData(out.LockScript) {
		return false
	}
	return out.Value < threshold
}

// CheckDust returns ErrDustOutput for the first output of outs below
// threshold.
func CheckDust(outs []Output, threshold uint64) error {
	for i, out := range outs {
		if IsDust(out, threshold) {
			return fmt.Errorf("%w: output %d has %d < %d", ErrDustOutput, i, out.Value, threshold)
		}
	}
	return nil
}
