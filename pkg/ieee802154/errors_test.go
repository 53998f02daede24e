package ieee802154

import (
	"errors"
	"testing"
)

func TestRadioErrorUnwrap(t *testing.T) {
	driverErr := errors.New("spi timeout")
	err := error(&RadioError{Op: RadioOpTune, Channel: 15, Err: driverErr})

	if !errors.Is(err, driverErr) {
		t.Error("RadioError should unwrap to the driver error")
	}
	var re *RadioError
	if !errors.As(err, &re) || re.Channel != 15 {
		t.Errorf("errors.As failed: %v", err)
	}
	if err.Error() != "radio tune on channel 15: spi timeout" {
		t.Errorf("Error() = %q", err.Error())
	}
}

func TestAssociationErrorIsRejected(t *testing.T) {
	err := error(&AssociationError{Status: 0x01})
	if !errors.Is(err, ErrAssociationRejected) {
		t.Error("AssociationError should match ErrAssociationRejected")
	}
	if errors.Is(err, ErrNoResponse) {
		t.Error("AssociationError should not match ErrNoResponse")
	}
	if err.Error() != "association rejected: PAN_AT_CAPACITY" {
		t.Errorf("Error() = %q", err.Error())
	}
}

func TestValidChannel(t *testing.T) {
	for ch := uint16(0); ch < 40; ch++ {
		want := ch >= 11 && ch <= 26
		if ValidChannel(ch) != want {
			t.Errorf("ValidChannel(%d) = %v, want %v", ch, !want, want)
		}
	}
}
