package modem

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"i4.energy/sms-gateway/at"
)

// NetworkStatus reports the modem's circuit-switched registration
// state, decoded from AT+CREG?.
type NetworkStatus struct {
	Registered bool
	Roaming    bool
	Raw        string
}

// NetworkStatus queries AT+CREG?.
func (m *Modem) NetworkStatus(ctx context.Context) (NetworkStatus, error) {
	line, err := m.Exec(ctx, at.CmdNetworkStatus, []string{"+CREG:"})
	if err != nil {
		return NetworkStatus{}, err
	}
	fields := splitCSVResponse(line, "+CREG:")
	if len(fields) < 2 {
		return NetworkStatus{Raw: line}, nil
	}
	stat, err := strconv.Atoi(fields[1])
	if err != nil {
		return NetworkStatus{Raw: line}, nil
	}
	return NetworkStatus{
		Registered: stat == 1 || stat == 5,
		Roaming:    stat == 5,
		Raw:        line,
	}, nil
}

// SignalQuality queries AT+CSQ directly (as opposed to the value
// cached from an unsolicited +CSQ: URC).
func (m *Modem) SignalQuality(ctx context.Context) (SignalStrength, error) {
	line, err := m.Exec(ctx, at.CmdSignalQuality, []string{"+CSQ:"})
	if err != nil {
		return SignalStrength{}, err
	}
	sig, ok := parseSignalStrength(line)
	if !ok {
		return SignalStrength{}, fmt.Errorf("modem: unrecognized +CSQ response %q", line)
	}
	return sig, nil
}

// NetworkOperator queries AT+COPS? and returns the operator name as
// registered on the SIM's operator selection.
func (m *Modem) NetworkOperator(ctx context.Context) (string, error) {
	line, err := m.Exec(ctx, at.CmdNetworkOperator, []string{"+COPS:"})
	if err != nil {
		return "", err
	}
	fields := splitCSVResponse(line, "+COPS:")
	if len(fields) < 3 {
		return "", nil
	}
	return strings.Trim(fields[2], `"`), nil
}

// ServiceProvider queries AT+CSPN?, the SIM-stored service provider
// name. Not every modem/SIM combination supports this command.
func (m *Modem) ServiceProvider(ctx context.Context) (string, error) {
	line, err := m.Exec(ctx, at.CmdServiceProvider, []string{"+CSPN:"})
	if err != nil {
		return "", err
	}
	fields := splitCSVResponse(line, "+CSPN:")
	if len(fields) < 1 {
		return "", nil
	}
	return strings.Trim(fields[0], `"`), nil
}

// BatteryLevel is decoded from AT+CBC: charge state and percentage.
type BatteryLevel struct {
	Charging   bool
	Percentage int
}

// BatteryLevel queries AT+CBC.
func (m *Modem) BatteryLevel(ctx context.Context) (BatteryLevel, error) {
	line, err := m.Exec(ctx, at.CmdBatteryLevel, []string{"+CBC:"})
	if err != nil {
		return BatteryLevel{}, err
	}
	fields := splitCSVResponse(line, "+CBC:")
	if len(fields) < 2 {
		return BatteryLevel{}, fmt.Errorf("modem: unrecognized +CBC response %q", line)
	}
	state, err1 := strconv.Atoi(fields[0])
	pct, err2 := strconv.Atoi(fields[1])
	if err1 != nil || err2 != nil {
		return BatteryLevel{}, fmt.Errorf("modem: unrecognized +CBC response %q", line)
	}
	return BatteryLevel{Charging: state == 1, Percentage: pct}, nil
}

// DeviceInfo aggregates the modem's static identification fields,
// queried individually since no single AT command returns all of
// them.
type DeviceInfo struct {
	Manufacturer     string
	Model            string
	FirmwareRevision string
	SerialNumber     string
}

// DeviceInfo issues AT+CGMI, AT+CGMM, AT+CGMR, AT+CGSN in sequence.
func (m *Modem) DeviceInfo(ctx context.Context) (DeviceInfo, error) {
	manufacturer, err := m.Exec(ctx, at.CmdManufacturer, nil)
	if err != nil {
		return DeviceInfo{}, err
	}
	model, err := m.Exec(ctx, at.CmdModel, nil)
	if err != nil {
		return DeviceInfo{}, err
	}
	revision, err := m.Exec(ctx, at.CmdFirmwareRevision, nil)
	if err != nil {
		return DeviceInfo{}, err
	}
	serial, err := m.Exec(ctx, at.CmdSerialNumber, nil)
	if err != nil {
		return DeviceInfo{}, err
	}
	return DeviceInfo{
		Manufacturer:     strings.TrimSpace(manufacturer),
		Model:            strings.TrimSpace(model),
		FirmwareRevision: strings.TrimSpace(revision),
		SerialNumber:     strings.TrimSpace(serial),
	}, nil
}

// PhoneNumber queries AT+CNUM, the SIM's own subscriber number. Many
// SIMs never have this field provisioned, in which case the modem
// answers OK with no +CNUM: line and this returns an empty string.
func (m *Modem) PhoneNumber(ctx context.Context) (string, error) {
	line, err := m.Exec(ctx, at.CmdPhoneNumber, []string{"+CNUM:"})
	if err != nil {
		return "", err
	}
	fields := splitCSVResponse(line, "+CNUM:")
	if len(fields) < 2 {
		return "", nil
	}
	return strings.Trim(fields[1], `"`), nil
}

// splitCSVResponse strips a "+XXX:" prefix and splits the remainder on
// commas, trimming surrounding whitespace from each field. Quoted
// fields containing commas are not expected in any command this
// driver queries.
func splitCSVResponse(line, prefix string) []string {
	body := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), prefix))
	if body == "" {
		return nil
	}
	fields := strings.Split(body, ",")
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}
	return fields
}
