package entrypoint

// Deserialize decodes input into params, failing with ErrBufferTooShort or
// ErrInvalidIndex when the layout does not hold together.
func Deserialize(input []byte, params *Parameters) error {
	if input == nil || params == nil {
		return ErrNullInput
	}
	c := NewCursor(input)
	return deserialize(&c, dupTable{entries: params.Accounts, checked: true}, params)
}

// DeserializeTrusted decodes input produced by a cooperating host. Only the
// null checks are performed; a malformed buffer panics or yields garbage.
func DeserializeTrusted(input []byte, params *Parameters) error {
	if input == nil || params == nil {
		return ErrNullInput
	}
	c := NewTrustedCursor(input)
	return deserialize(&c, dupTable{entries: params.Accounts}, params)
}

func deserialize(c *Cursor, table dupTable, params *Parameters) error {
	count, err := c.ReadU64()
	if err != nil {
		return err
	}
	params.AccountsLen = count

	capacity := uint64(len(params.Accounts))
	for i := uint64(0); i < count; i++ {
		if err := decodeAccount(c, table, i, i < capacity); err != nil {
			return err
		}
	}

	n, err := c.ReadU64()
	if err != nil {
		return err
	}
	if params.InstructionData, err = c.ReadBytes(n); err != nil {
		return err
	}
	params.ProgramID, err = c.ReadPubkey()
	return err
}

// decodeAccount consumes one entry. When keep is false the entry is read
// and dropped so the cursor still lands on the next field.
func decodeAccount(c *Cursor, table dupTable, i uint64, keep bool) error {
	marker, err := c.ReadU8()
	if err != nil {
		return err
	}

	if marker != NonDupMarker {
		if err := c.Skip(duplicatePadding); err != nil {
			return err
		}
		if !keep {
			return nil
		}
		a, err := table.resolve(marker, i)
		if err != nil {
			return err
		}
		table.register(i, a)
		return nil
	}

	var a AccountInfo
	if a.IsSigner, err = c.ReadBool(); err != nil {
		return err
	}
	if a.IsWritable, err = c.ReadBool(); err != nil {
		return err
	}
	if a.Executable, err = c.ReadBool(); err != nil {
		return err
	}
	if err = c.Skip(canonicalPadding); err != nil {
		return err
	}
	if a.Key, err = c.ReadPubkey(); err != nil {
		return err
	}
	if a.Owner, err = c.ReadPubkey(); err != nil {
		return err
	}
	if a.Lamports, err = c.ReadBalance(); err != nil {
		return err
	}
	dataLen, err := c.ReadU64()
	if err != nil {
		return err
	}
	if a.Data, err = c.ReadBytes(dataLen); err != nil {
		return err
	}
	if err = c.Skip(MaxPermittedDataIncrease); err != nil {
		return err
	}
	if err = c.Align(); err != nil {
		return err
	}
	if a.RentEpoch, err = c.ReadU64(); err != nil {
		return err
	}

	if keep {
		table.register(i, a)
	}
	return nil
}
