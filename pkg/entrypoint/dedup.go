package entrypoint

import "fmt"

// dupTable resolves duplicate markers against entries decoded earlier. It
// is backed by the caller's account storage, so registering an entry is
// the same write that publishes it.
type dupTable struct {
	entries []AccountInfo
	checked bool
}

func (t dupTable) register(i uint64, a AccountInfo) {
	t.entries[i] = a
}

func (t dupTable) resolve(idx uint8, i uint64) (AccountInfo, error) {
	if t.checked && uint64(idx) >= i {
		return AccountInfo{}, fmt.Errorf("%w: entry %d refers to %d", ErrInvalidIndex, i, idx)
	}
	return t.entries[idx], nil
}
