package entrypoint

import (
	"crypto/sha256"
	"encoding/binary"

	"github.com/fortiblox/x1-entrypoint/pkg/types"
)

func testPubkey(seed string) types.Pubkey {
	return types.Pubkey(sha256.Sum256([]byte(seed)))
}

// wireAccount is one entry of a hand-built input. dupOf >= 0 writes a
// duplicate marker instead of the fields.
type wireAccount struct {
	key, owner                   types.Pubkey
	lamports                     uint64
	data                         []byte
	rentEpoch                    uint64
	signer, writable, executable bool
	dupOf                        int
}

func canonical(seed string, lamports uint64, data []byte) wireAccount {
	return wireAccount{
		key:      testPubkey(seed),
		owner:    testPubkey(seed + "/owner"),
		lamports: lamports,
		data:     data,
		dupOf:    -1,
	}
}

func duplicate(of int) wireAccount {
	return wireAccount{dupOf: of}
}

func flag(b bool) byte {
	if b {
		return 1
	}
	return 0
}

func encodeInput(accounts []wireAccount, instruction []byte, programID types.Pubkey) []byte {
	buf := binary.LittleEndian.AppendUint64(nil, uint64(len(accounts)))
	for _, a := range accounts {
		if a.dupOf >= 0 {
			buf = append(buf, byte(a.dupOf), 0, 0, 0, 0, 0, 0, 0)
			continue
		}
		buf = append(buf, NonDupMarker, flag(a.signer), flag(a.writable), flag(a.executable), 0, 0, 0, 0)
		buf = append(buf, a.key[:]...)
		buf = append(buf, a.owner[:]...)
		buf = binary.LittleEndian.AppendUint64(buf, a.lamports)
		buf = binary.LittleEndian.AppendUint64(buf, uint64(len(a.data)))
		buf = append(buf, a.data...)
		buf = append(buf, make([]byte, MaxPermittedDataIncrease)...)
		for len(buf)%8 != 0 {
			buf = append(buf, 0)
		}
		buf = binary.LittleEndian.AppendUint64(buf, a.rentEpoch)
	}
	buf = binary.LittleEndian.AppendUint64(buf, uint64(len(instruction)))
	buf = append(buf, instruction...)
	buf = append(buf, programID[:]...)
	return buf
}

// recordingLogger captures log calls in order.
type recordingLogger struct {
	records []logRecord
}

type logRecord struct {
	msg    string
	args   [5]uint64
	pubkey *types.Pubkey
}

func (r *recordingLogger) Log(msg string) {
	r.records = append(r.records, logRecord{msg: msg})
}

func (r *recordingLogger) Log64(a1, a2, a3, a4, a5 uint64) {
	r.records = append(r.records, logRecord{args: [5]uint64{a1, a2, a3, a4, a5}})
}

func (r *recordingLogger) LogPubkey(pk *types.Pubkey) {
	r.records = append(r.records, logRecord{pubkey: pk})
}
