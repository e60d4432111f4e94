package bluetooth

import (
	"testing"

	"github.com/go-ble/ble"
)

// fakeAdv implements ble.Advertisement for filter tests.
type fakeAdv struct {
	name string
	mfr  []byte
	addr string
}

func (a *fakeAdv) LocalName() string              { return a.name }
func (a *fakeAdv) ManufacturerData() []byte       { return a.mfr }
func (a *fakeAdv) ServiceData() []ble.ServiceData { return nil }
func (a *fakeAdv) Services() []ble.UUID           { return nil }
func (a *fakeAdv) OverflowService() []ble.UUID    { return nil }
func (a *fakeAdv) TxPowerLevel() int              { return 0 }
func (a *fakeAdv) Connectable() bool              { return true }
func (a *fakeAdv) SolicitedService() []ble.UUID   { return nil }
func (a *fakeAdv) RSSI() int                      { return -60 }
func (a *fakeAdv) Addr() ble.Addr                 { return ble.NewAddr(a.addr) }

func valveData() []byte {
	// Company identifier 0x055D, little endian, plus opaque payload
	return []byte{0x5D, 0x05, 0x12, 0x02, 0x00}
}

func TestIsBaseStation_Match(t *testing.T) {
	adv := &fakeAdv{name: "LHB-AAAA1111", mfr: valveData(), addr: "aa:bb:cc:dd:ee:01"}
	if !isBaseStation(adv) {
		t.Fatal("expected a prefixed, Valve-tagged advertisement to match")
	}
}

func TestIsBaseStation_WrongPrefix(t *testing.T) {
	adv := &fakeAdv{name: "HTC-AAAA1111", mfr: valveData(), addr: "aa:bb:cc:dd:ee:01"}
	if isBaseStation(adv) {
		t.Fatal("expected non-LHB name to be rejected")
	}
}

func TestIsBaseStation_NoName(t *testing.T) {
	adv := &fakeAdv{name: "", mfr: valveData(), addr: "aa:bb:cc:dd:ee:01"}
	if isBaseStation(adv) {
		t.Fatal("expected nameless advertisement to be rejected")
	}
}

func TestIsBaseStation_WrongManufacturer(t *testing.T) {
	adv := &fakeAdv{name: "LHB-AAAA1111", mfr: []byte{0x4C, 0x00, 0x01}, addr: "aa:bb:cc:dd:ee:01"}
	if isBaseStation(adv) {
		t.Fatal("expected foreign manufacturer data to be rejected")
	}
}

func TestIsBaseStation_TruncatedManufacturerData(t *testing.T) {
	adv := &fakeAdv{name: "LHB-AAAA1111", mfr: []byte{0x5D}, addr: "aa:bb:cc:dd:ee:01"}
	if isBaseStation(adv) {
		t.Fatal("expected truncated manufacturer data to be rejected")
	}
}

func TestFindPowerCharacteristic_ExactMatch(t *testing.T) {
	exact := &ble.Characteristic{UUID: PowerCharUUID, Property: ble.CharWrite}
	other := &ble.Characteristic{UUID: ble.MustParse("2a00"), Property: ble.CharWrite}
	profile := &ble.Profile{
		Services: []*ble.Service{
			{UUID: ble.MustParse("1800"), Characteristics: []*ble.Characteristic{other}},
			{UUID: ControlServiceUUID, Characteristics: []*ble.Characteristic{exact}},
		},
	}

	if got := findPowerCharacteristic(profile); got != exact {
		t.Fatalf("expected the exact power characteristic, got %v", got)
	}
}

func TestFindPowerCharacteristic_ControlServiceFallback(t *testing.T) {
	inService := &ble.Characteristic{UUID: ble.MustParse("2a01"), Property: ble.CharWriteNR}
	outside := &ble.Characteristic{UUID: ble.MustParse("2a02"), Property: ble.CharWrite}
	profile := &ble.Profile{
		Services: []*ble.Service{
			{UUID: ble.MustParse("1800"), Characteristics: []*ble.Characteristic{outside}},
			{UUID: ControlServiceUUID, Characteristics: []*ble.Characteristic{inService}},
		},
	}

	if got := findPowerCharacteristic(profile); got != inService {
		t.Fatalf("expected the writable control-service characteristic, got %v", got)
	}
}

func TestFindPowerCharacteristic_AnyWritableFallback(t *testing.T) {
	readable := &ble.Characteristic{UUID: ble.MustParse("2a03"), Property: ble.CharRead}
	writable := &ble.Characteristic{UUID: ble.MustParse("2a04"), Property: ble.CharWrite}
	profile := &ble.Profile{
		Services: []*ble.Service{
			{UUID: ble.MustParse("1800"), Characteristics: []*ble.Characteristic{readable, writable}},
		},
	}

	if got := findPowerCharacteristic(profile); got != writable {
		t.Fatalf("expected the writable fallback, got %v", got)
	}
}

func TestFindPowerCharacteristic_NothingWritable(t *testing.T) {
	readable := &ble.Characteristic{UUID: ble.MustParse("2a03"), Property: ble.CharRead}
	profile := &ble.Profile{
		Services: []*ble.Service{
			{UUID: ble.MustParse("1800"), Characteristics: []*ble.Characteristic{readable}},
		},
	}

	if got := findPowerCharacteristic(profile); got != nil {
		t.Fatalf("expected no characteristic, got %v", got)
	}
}
