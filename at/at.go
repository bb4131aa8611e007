// Package at implements the AT-command line framing and classification
// rules used by the modem driver: splitting a raw byte stream into
// discrete response lines, and telling a solicited response apart from
// an unsolicited result code (URC).
package at

const (
	// Terminal Control
	CRLF   = "\r\n"
	Prompt = ">"

	// Response Codes
	OK         = "OK"
	ERROR      = "ERROR"
	NoCarrier  = "NO CARRIER"
	NoDialtone = "NO DIALTONE"
	Busy       = "BUSY"
	NoAnswer   = "NO ANSWER"
	CmeError   = "+CME ERROR:"
	CmsError   = "+CMS ERROR:"

	// URC (Unsolicited Result Code) prefixes. Only those listed in
	// unconditionalURCPrefixes are always URCs; the others are URCs
	// only when the in-flight command does not expect them.
	UrcIncomingSMS  = "+CMT:"
	UrcDeliveryRpt  = "+CDS:"
	UrcNetworkReg   = "+CREG:"
	UrcGPRSNetwork  = "+CGREG:"
	UrcGNSSInfoSim  = "+CGNSINF:"
	UrcGNSSInfoAlt  = "+UGNSINF:"
	UrcCall         = "RING"
	UrcMessageIndex = "+CMTI:"

	// CtrlZ terminates an SMS payload written after the '>' prompt.
	CtrlZ = "\x1A"

	// Init script commands, sent in this order during Modem.init. See
	// SPEC_FULL.md §4.4.
	CmdReset          = "ATZ"
	CmdEchoOff        = "ATE0"
	CmdVerboseErrors  = "AT+CMEE=2"
	CmdPduMode        = "AT+CMGF=0"
	CmdCharsetGSM     = `AT+CSCS="GSM"`
	CmdCNMI           = "AT+CNMI=2,2,0,1,0"
	CmdSMSParams      = "AT+CSMP=49,167,0,0"
	CmdPreferredStore = `AT+CPMS="ME","ME","ME"`
	CmdGNSSPower      = "AT+CGNSPWR=1"
	CmdGNSSReset      = "AT+CGPSRST=0"
	CmdGNSSURCFmt     = "AT+CGNSURC=%d"

	// CmdSync is the harmless liveness probe sent after a request
	// timeout, per SPEC_FULL.md §4.4.
	CmdSync = "AT"

	CmdSimStatus = "AT+CPIN?"
	SimReady     = "READY"
	SimPin       = "SIM PIN"

	CmdSignalQuality = "AT+CSQ"
	CmdSendPrefixFmt = `AT+CMGS=%d`

	// Device/network query commands, used by the HTTP adapter's
	// read-only status routes rather than during init.
	CmdNetworkStatus    = "AT+CREG?"
	CmdNetworkOperator  = "AT+COPS?"
	CmdServiceProvider  = "AT+CSPN?"
	CmdBatteryLevel     = "AT+CBC"
	CmdManufacturer     = "AT+CGMI"
	CmdModel            = "AT+CGMM"
	CmdFirmwareRevision = "AT+CGMR"
	CmdSerialNumber     = "AT+CGSN"
	CmdPhoneNumber      = "AT+CNUM"
)

// ResponseType classifies a single decoded line from the modem.
type ResponseType int

const (
	TypeFinal        ResponseType = iota // OK, ERROR, +CME/+CMS ERROR
	TypeURC                              // Asynchronous notification, unrelated to any pending command
	TypeIntermediate                     // Data line belonging to the currently executing command
	TypePrompt                           // SMS input prompt ('>')
)

// PendingCommand is the minimal view the classifier needs of the
// command currently occupying the modem driver's single execution
// slot: the set of "+XXX:" prefixes it is prepared to treat as its
// own intermediate responses. A line matching none of these prefixes,
// and not itself a well-known final result, is a URC.
type PendingCommand struct {
	// ExpectedPrefixes lists the "+XXX:" response prefixes this command
	// may legitimately produce as intermediate lines (e.g. "+CMGS:" for
	// AT+CMGS, "+CSQ:" for AT+CSQ). Empty means the command expects no
	// intermediate lines at all — any "+XXX:" line is a URC.
	ExpectedPrefixes []string
}

// unconditionalURCPrefixes are lines that are always a URC, never a
// response to any command, because no AT command in this driver ever
// solicits them directly.
var unconditionalURCPrefixes = []string{
	UrcIncomingSMS,
	UrcDeliveryRpt,
	UrcGNSSInfoAlt,
	UrcMessageIndex,
}
