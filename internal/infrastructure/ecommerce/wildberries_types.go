package ecommerce

// wbCardsRequest is the request body for the card list endpoint
type wbCardsRequest struct {
	Limit      int    `json:"limit"`
	Offset     int    `json:"offset"`
	TextSearch string `json:"textSearch,omitempty"`
}

// WBCardsResponse is the envelope returned by the card list endpoint
type WBCardsResponse struct {
	Cards     []WBCard `json:"cards"`
	Total     int      `json:"total"`
	Error     bool     `json:"error"`
	ErrorText string   `json:"errorText"`
}

// IsSuccess returns true if the response carries no API-level error
func (r *WBCardsResponse) IsSuccess() bool {
	return !r.Error
}

// WBCard is a single product card as returned by the content API
type WBCard struct {
	NmID        int64     `json:"nmID"`
	VendorCode  string    `json:"vendorCode"`
	Brand       string    `json:"brand"`
	Title       string    `json:"title"`
	SubjectName string    `json:"subjectName"`
	Description string    `json:"description"`
	Barcode     string    `json:"barcode"`
	Price       string    `json:"price"`
	Rating      *float64  `json:"rating"`
	Feedbacks   int       `json:"feedbacks"`
	InStock     bool      `json:"inStock"`
	Photos      []WBPhoto `json:"photos"`
}

// WBPhoto is one published card photo
type WBPhoto struct {
	Big   string `json:"big"`
	Small string `json:"tm"`
}
