package tokenstore

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
)

const recordFormatVersionV1 = 1

const maxSignedValueLen = 1 << 14

// Encode serializes a record into the versioned binary blob stored in Redis.
func Encode(r *Record) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteByte(recordFormatVersionV1)

	if len(r.UserID) == 0 || len(r.UserID) > 255 {
		return nil, errors.New("invalid userID length")
	}
	buf.WriteByte(byte(len(r.UserID)))
	buf.WriteString(r.UserID)

	if len(r.TokenID) == 0 || len(r.TokenID) > 255 {
		return nil, errors.New("invalid tokenID length")
	}
	buf.WriteByte(byte(len(r.TokenID)))
	buf.WriteString(r.TokenID)

	buf.WriteByte(byte(r.Purpose))

	if len(r.SignedValue) == 0 || len(r.SignedValue) > maxSignedValueLen {
		return nil, errors.New("invalid signed value length")
	}
	if err := binary.Write(&buf, binary.BigEndian, uint16(len(r.SignedValue))); err != nil {
		return nil, err
	}
	buf.WriteString(r.SignedValue)

	if err := binary.Write(&buf, binary.BigEndian, r.IssuedAt); err != nil {
		return nil, err
	}
	if err := binary.Write(&buf, binary.BigEndian, r.ExpiresAt); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// Decode deserializes a blob produced by [Encode].
func Decode(data []byte) (*Record, error) {
	reader := bytes.NewReader(data)

	version, err := reader.ReadByte()
	if err != nil {
		return nil, ErrCorrupt
	}
	if version != recordFormatVersionV1 {
		return nil, ErrCorrupt
	}

	r := &Record{}

	userID, err := readString8(reader)
	if err != nil {
		return nil, ErrCorrupt
	}
	r.UserID = userID

	tokenID, err := readString8(reader)
	if err != nil {
		return nil, ErrCorrupt
	}
	r.TokenID = tokenID

	purpose, err := reader.ReadByte()
	if err != nil {
		return nil, ErrCorrupt
	}
	if Purpose(purpose) != PurposeAccess && Purpose(purpose) != PurposeRefresh {
		return nil, ErrCorrupt
	}
	r.Purpose = Purpose(purpose)

	var signedLen uint16
	if err := binary.Read(reader, binary.BigEndian, &signedLen); err != nil {
		return nil, ErrCorrupt
	}
	if signedLen == 0 || int(signedLen) > maxSignedValueLen {
		return nil, ErrCorrupt
	}
	signed := make([]byte, signedLen)
	if _, err := io.ReadFull(reader, signed); err != nil {
		return nil, ErrCorrupt
	}
	r.SignedValue = string(signed)

	if err := binary.Read(reader, binary.BigEndian, &r.IssuedAt); err != nil {
		return nil, ErrCorrupt
	}
	if err := binary.Read(reader, binary.BigEndian, &r.ExpiresAt); err != nil {
		return nil, ErrCorrupt
	}

	if reader.Len() != 0 {
		return nil, ErrCorrupt
	}

	return r, nil
}

func readString8(reader *bytes.Reader) (string, error) {
	length, err := reader.ReadByte()
	if err != nil {
		return "", err
	}
	if length == 0 {
		return "", errors.New("empty field")
	}
	raw := make([]byte, length)
	if _, err := io.ReadFull(reader, raw); err != nil {
		return "", err
	}
	return string(raw), nil
}
