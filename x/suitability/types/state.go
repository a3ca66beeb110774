package types

// Verifier is an entry of the verifier registry. Index is assigned on first
// registration and never reused.
type Verifier struct {
	Index   uint64 `json:"index" yaml:"index"`
	Address string `json:"address" yaml:"address"`
	Active  bool   `json:"active" yaml:"active"`
}

// CertificateRecord is the certificate a verifier attested for a user.
// Certificate is the decimal rendering of the field element.
type CertificateRecord struct {
	User          string `json:"user" yaml:"user"`
	VerifierIndex uint64 `json:"verifier_index" yaml:"verifier_index"`
	Certificate   string `json:"certificate" yaml:"certificate"`
}

// Challenge is a posted suitability condition. Everything but Responses is
// immutable once created; Responses only grows.
type Challenge struct {
	Id          uint64      `json:"id" yaml:"id"`
	Creator     string      `json:"creator" yaml:"creator"`
	Description string      `json:"description" yaml:"description"`
	Directions  []Direction `json:"directions" yaml:"directions"`
	Thresholds  []uint64    `json:"thresholds" yaml:"thresholds"`
	Responses   []string    `json:"responses" yaml:"responses"`
}

// HasResponded reports whether addr is in the response set.
func (c Challenge) HasResponded(addr string) bool {
	for _, r := range c.Responses {
		if r == addr {
			return true
		}
	}
	return false
}
