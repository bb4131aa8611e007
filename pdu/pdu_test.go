package pdu

import (
	"strings"
	"testing"
)

func TestEncodeAddressInternational(t *testing.T) {
	digitCount, toa, packed, err := EncodeAddress("+441234567890")
	if err != nil {
		t.Fatalf("EncodeAddress: %v", err)
	}
	if toa != TypeOfAddressInternational {
		t.Errorf("toa = 0x%x, want international", toa)
	}
	got, err := DecodeAddress(digitCount, toa, packed)
	if err != nil {
		t.Fatalf("DecodeAddress: %v", err)
	}
	if got != "+441234567890" {
		t.Errorf("round trip = %q, want %q", got, "+441234567890")
	}
}

func TestEncodeAddressOddLength(t *testing.T) {
	digitCount, toa, packed, err := EncodeAddress("+44123456789")
	if err != nil {
		t.Fatalf("EncodeAddress: %v", err)
	}
	got, err := DecodeAddress(digitCount, toa, packed)
	if err != nil {
		t.Fatalf("DecodeAddress: %v", err)
	}
	if got != "+44123456789" {
		t.Errorf("round trip = %q, want %q", got, "+44123456789")
	}
}

func TestGSM7PackUnpackRoundTrip(t *testing.T) {
	text := "Hello, this is a test SMS message with punctuation!"
	packed, count := EncodeGSM7(text)
	septets := UnpackGSM7(packed, count, 0)
	got := DecodeGSM7Septets(septets)
	if got != text {
		t.Errorf("round trip = %q, want %q", got, text)
	}
}

func TestGSM7ExtensionCharacters(t *testing.T) {
	text := "price: 10€ [ok]"
	if !IsGSM7(text) {
		t.Fatalf("expected %q to be representable in GSM-7", text)
	}
	packed, count := EncodeGSM7(text)
	septets := UnpackGSM7(packed, count, 0)
	got := DecodeGSM7Septets(septets)
	if got != text {
		t.Errorf("round trip = %q, want %q", got, text)
	}
}

func TestIsGSM7RejectsUnrepresentable(t *testing.T) {
	if IsGSM7("emoji 🎉") {
		t.Error("expected emoji text to require UCS-2")
	}
}

func TestUCS2RoundTrip(t *testing.T) {
	text := "emoji 🎉 test"
	encoded, err := EncodeUCS2(text)
	if err != nil {
		t.Fatalf("EncodeUCS2: %v", err)
	}
	decoded, err := DecodeUCS2(encoded)
	if err != nil {
		t.Fatalf("DecodeUCS2: %v", err)
	}
	if decoded != text {
		t.Errorf("round trip = %q, want %q", decoded, text)
	}
}

func TestSubmitPDUSingleSegmentRoundTrip(t *testing.T) {
	pdus, err := SegmentMessage("+441234567890", "Hello world", false, 0x01)
	if err != nil {
		t.Fatalf("SegmentMessage: %v", err)
	}
	if len(pdus) != 1 {
		t.Fatalf("got %d segments, want 1", len(pdus))
	}
	pdus[0].Reference = 0x00

	hexPDU, tpduLen, err := pdus[0].Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if tpduLen <= 0 {
		t.Fatalf("tpduLen = %d, want > 0", tpduLen)
	}

	decoded, err := DecodeSubmit(hexPDU)
	if err != nil {
		t.Fatalf("DecodeSubmit: %v", err)
	}
	if decoded.Destination != "+441234567890" {
		t.Errorf("destination = %q", decoded.Destination)
	}
	if decoded.Encoding != EncodingGSM7 {
		t.Errorf("encoding = %v, want GSM7", decoded.Encoding)
	}
	got := DecodeGSM7Septets(decoded.Septets)
	if got != "Hello world" {
		t.Errorf("text = %q, want %q", got, "Hello world")
	}
}

func TestSubmitPDUConcatenationSegmentCount(t *testing.T) {
	// 200 GSM-7 characters must produce exactly two segments, each
	// carrying a concatenation UDH with a shared reference.
	text := strings.Repeat("a", 200)
	pdus, err := SegmentMessage("+441234567890", text, false, 0x42)
	if err != nil {
		t.Fatalf("SegmentMessage: %v", err)
	}
	if len(pdus) != 2 {
		t.Fatalf("got %d segments, want 2", len(pdus))
	}

	var reassembled strings.Builder
	for i, p := range pdus {
		if p.UDH == nil {
			t.Fatalf("segment %d missing UDH", i)
		}
		if p.UDH.Reference != 0x42 {
			t.Errorf("segment %d reference = 0x%x, want 0x42", i, p.UDH.Reference)
		}
		if p.UDH.Total != 2 {
			t.Errorf("segment %d total = %d, want 2", i, p.UDH.Total)
		}
		if p.UDH.Index != byte(i+1) {
			t.Errorf("segment %d index = %d, want %d", i, p.UDH.Index, i+1)
		}

		hexPDU, _, err := p.Encode()
		if err != nil {
			t.Fatalf("segment %d Encode: %v", i, err)
		}
		decoded, err := DecodeSubmit(hexPDU)
		if err != nil {
			t.Fatalf("segment %d DecodeSubmit: %v", i, err)
		}
		if decoded.UDH == nil || *decoded.UDH != *p.UDH {
			t.Errorf("segment %d UDH round trip = %+v, want %+v", i, decoded.UDH, p.UDH)
		}
		reassembled.WriteString(DecodeGSM7Septets(decoded.Septets))
	}

	if reassembled.String() != text {
		t.Errorf("reassembled text = %q, want original", reassembled.String())
	}
}

func TestSubmitPDUFlashSetsMessageClass0(t *testing.T) {
	pdus, err := SegmentMessage("+441234567890", "urgent", true, 0x01)
	if err != nil {
		t.Fatalf("SegmentMessage: %v", err)
	}
	enc, flash := ParseDCS(BuildDCS(pdus[0].Encoding, pdus[0].Flash))
	if !flash {
		t.Error("expected flash bit set")
	}
	if enc != EncodingGSM7 {
		t.Errorf("encoding = %v", enc)
	}
}

func TestDecodeTimestampAndEncodeRoundTrip(t *testing.T) {
	scts := []byte{0x52, 0x10, 0x60, 0x21, 0x43, 0x50, 0x00}
	ts, err := DecodeTimestamp(scts)
	if err != nil {
		t.Fatalf("DecodeTimestamp: %v", err)
	}
	if ts.Year() != 2025 || ts.Month() != 1 || ts.Day() != 6 {
		t.Errorf("decoded date = %v", ts)
	}

	reencoded := EncodeTimestamp(ts)
	roundTrip, err := DecodeTimestamp(reencoded)
	if err != nil {
		t.Fatalf("DecodeTimestamp of reencoded: %v", err)
	}
	if !roundTrip.Equal(ts) {
		t.Errorf("round trip = %v, want %v", roundTrip, ts)
	}
}
