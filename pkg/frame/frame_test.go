package frame

import (
	"bytes"
	"testing"

	"github.com/lrwpan/lrwpan-go/pkg/ieee802154"
)

var (
	testCoord = ieee802154.ShortAddress(0x0000)
	testSelf  = ieee802154.ExtendedAddress([8]byte{0x00, 0x12, 0x4b, 0x00, 0x00, 0x00, 0x00, 0x01})
)

func TestBeaconRequestIsBroadcast(t *testing.T) {
	f := NewBeaconRequest(7)

	if !f.IsCommand(CmdBeaconRequest) {
		t.Fatalf("frame is %s, want beacon request", f)
	}
	if f.DstPANID != ieee802154.BroadcastPANID {
		t.Errorf("DstPANID = 0x%04x, want broadcast", f.DstPANID)
	}
	if v, ok := f.Dst.Short(); !ok || v != ieee802154.BroadcastShortAddr {
		t.Errorf("Dst = %v, want broadcast short", f.Dst)
	}
	if f.AckRequest {
		t.Error("beacon request must not request an ACK")
	}
}

func TestAssociationRequest(t *testing.T) {
	f := NewAssociationRequest(3, 0x1234, testCoord, testSelf, CapAllocateAddress)

	if !f.AckRequest {
		t.Error("association request must request an ACK")
	}
	if f.SrcPANID != ieee802154.BroadcastPANID {
		t.Errorf("SrcPANID = 0x%04x, want broadcast", f.SrcPANID)
	}
	if !bytes.Equal(f.Payload, []byte{CapAllocateAddress}) {
		t.Errorf("Payload = %x", f.Payload)
	}
}

func TestAssociationResponseDecode(t *testing.T) {
	f := NewAssociationResponse(9, 0x1234, testSelf, testCoord, 0x0042, AssocSuccess)

	short, status, ok := f.AssociationResponse()
	if !ok {
		t.Fatal("AssociationResponse() not ok")
	}
	if short != 0x0042 || status != AssocSuccess {
		t.Errorf("got short=0x%04x status=%d", short, status)
	}

	if _, _, ok := NewAck(9).AssociationResponse(); ok {
		t.Error("ACK decoded as association response")
	}
	truncated := &Frame{Type: TypeCommand, Command: CmdAssociationResponse, Payload: []byte{1}}
	if _, _, ok := truncated.AssociationResponse(); ok {
		t.Error("truncated payload decoded as association response")
	}
}

func TestCodecPreservesAddresses(t *testing.T) {
	orig := NewAssociationRequest(200, 0x1234, testCoord, testSelf, CapAllocateAddress|CapReceiverOnWhenIdle)
	orig.LQI = 180
	orig.Channel = 15

	data, err := Encode(orig)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	got, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	if got.Dst != testCoord || got.Src != testSelf {
		t.Errorf("addresses: dst=%v src=%v", got.Dst, got.Src)
	}
	if got.Sequence != 200 || got.DstPANID != 0x1234 || got.Command != CmdAssociationRequest {
		t.Errorf("header mismatch: %s", got)
	}
	if got.LQI != 180 || got.Channel != 15 {
		t.Errorf("rx metadata: lqi=%d channel=%d", got.LQI, got.Channel)
	}
	if !bytes.Equal(got.Payload, orig.Payload) {
		t.Errorf("Payload = %x, want %x", got.Payload, orig.Payload)
	}
}

func TestDecodeGarbage(t *testing.T) {
	if _, err := Decode([]byte{0xff, 0x00}); err == nil {
		t.Error("Decode accepted garbage")
	}
}
