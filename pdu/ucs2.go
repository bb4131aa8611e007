package pdu

import (
	"golang.org/x/text/encoding/unicode"
)

var ucs2Encoding = unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM)

// EncodeUCS2 transcodes s into big-endian UCS-2, the fallback alphabet
// used whenever the text contains a character outside the GSM-7
// default and extension tables.
func EncodeUCS2(s string) ([]byte, error) {
	encoder := ucs2Encoding.NewEncoder()
	return encoder.Bytes([]byte(s))
}

// DecodeUCS2 reverses EncodeUCS2.
func DecodeUCS2(b []byte) (string, error) {
	decoder := ucs2Encoding.NewDecoder()
	out, err := decoder.Bytes(b)
	if err != nil {
		return "", err
	}
	return string(out), nil
}
