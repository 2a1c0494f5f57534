package extract

// Confidence labels summarizing how many extraction signals succeeded.
const (
	ConfidenceHigh    = "high"
	ConfidencePartial = "partial"
)

// Result is the ephemeral outcome of one extraction run. It is not persisted
// as-is; the pipeline maps it onto an ExtractedReceipt row when accepted.
type Result struct {
	MerchantName string  `json:"companyName"`
	Date         string  `json:"date"`
	Amount       string  `json:"amount"`
	TotalAmount  float64 `json:"totalAmount"`
	Confidence   string  `json:"confidence"`
}

// Assemble combines the three field extractions and applies the acceptance
// policy: one signal (valid merchant+amount, a date, or a positive amount) is
// enough to persist. Returns the result and whether it should be stored.
func Assemble(text, fileName string) (Result, bool) {
	r := Result{
		MerchantName: ExtractMerchant(text, fileName),
		Date:         ExtractDateTime(text),
		Amount:       ExtractAmount(text),
	}
	r.TotalAmount = ParseTotal(r.Amount)

	hasValidData := r.MerchantName != UnknownMerchant && r.TotalAmount > 0
	if hasValidData {
		r.Confidence = ConfidenceHigh
	} else {
		r.Confidence = ConfidencePartial
	}

	accepted := hasValidData || r.Date != "" || r.TotalAmount > 0
	return r, accepted
}
