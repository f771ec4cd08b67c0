package gate

// Method names of the gate backend's line protocol. One JSON document
// per exchange, each terminated by a newline.
const (
	MethodLogin      = "LOGIN"
	MethodHeartBeat  = "HEART_BEAT"
	MethodLogout     = "LOGOUT"
	MethodTicketInfo = "PARK_TICKET_GET_INFO"
	MethodTicketPay  = "PARK_TICKET_PAY"

	// MethodError is the backend's generic error marker, accepted in
	// place of the echoed request method.
	MethodError = "ERROR"
)

// Header carries the fields common to every request. LOGIN_ID is the
// session token; it is deliberately not omitempty because the first
// LOGIN must transmit it as an empty string.
type Header struct {
	Method  string `json:"METHOD"`
	OrderID int64  `json:"ORDER_ID"`
	LoginID string `json:"LOGIN_ID"`
}

func (h *Header) head() *Header { return h }

// Request is implemented by every typed request envelope. The retry
// path uses head() to rewrite ORDER_ID and LOGIN_ID before a resend.
type Request interface {
	head() *Header
}

type loginRequest struct {
	Header
	Login    string `json:"LOGIN"`
	PIN      string `json:"PIN"`
	Password string `json:"PASSWORD"`
	DeviceID int    `json:"DEVICE_ID"`
	IP       string `json:"IP"`
	NoEncode int    `json:"NOENCODE"`
	EntityID int    `json:"ENTITY_ID"`
}

// sessionRequest covers HEART_BEAT and LOGOUT, which carry only the
// common header.
type sessionRequest struct {
	Header
}

type ticketInfoRequest struct {
	Header
	Barcode  string `json:"BARCODE"`
	DateFrom string `json:"DATE_FROM"`
	DateTo   string `json:"DATE_TO"`
}

type ticketPayRequest struct {
	Header
	Barcode  string `json:"BARCODE"`
	DateFrom string `json:"DATE_FROM"`
	DateTo   string `json:"DATE_TO"`
	Fee      int64  `json:"FEE"`
}

// Response is the union of every field the backend sends back. Absent
// fields stay at their zero value; STATUS and METHOD are always present.
type Response struct {
	Status             int    `json:"STATUS"`
	Method             string `json:"METHOD"`
	OrderID            int64  `json:"ORDER_ID"`
	LoginID            string `json:"LOGIN_ID,omitempty"`
	User               string `json:"USER,omitempty"`
	TicketExist        int    `json:"TICKET_EXIST,omitempty"`
	RegistrationNumber string `json:"REGISTRATION_NUMBER,omitempty"`
	ValidFrom          string `json:"VALID_FROM,omitempty"`
	ValidTo            string `json:"VALID_TO,omitempty"`
	Fee                int64  `json:"FEE,omitempty"`
	FeePaid            int64  `json:"FEE_PAID,omitempty"`
	FeeType            int    `json:"FEE_TYPE,omitempty"`
	FeeMultiDay        int    `json:"FEE_MULTI_DAY,omitempty"`
	FeeStartsType      int    `json:"FEE_STARTS_TYPE,omitempty"`
	ReceiptNumber      string `json:"RECEIPT_NUMBER,omitempty"`
}
