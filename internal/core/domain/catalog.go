package domain

// Catalog is the fixed, read-only list of document categories a vendor
// submission is audited against. It doubles as the classification taxonomy
// sent to the analyzer.
type Catalog []string

// DefaultCatalog returns the standard 14-entry required-document checklist.
func DefaultCatalog() Catalog {
	return Catalog{
		"Fees application receipt copy",
		"Vendor registration certificate",
		"Certificate of incorporation of the firm",
		"Manufacturing process flow chart",
		"Valid ISO 9001, ISO 45001 and ISO 14001 certificates",
		"Factory layout chart",
		"Factory organizational structure",
		"Product compliance statement",
		"Product technical datasheets",
		"Omanisation details",
		"Product independent test certificates",
		"Attestation of sanitary conformity",
		"Products chemical composition",
		"Reference list of products used in Oman",
	}
}

// Contains reports whether category is an exact-match catalog entry.
// Classifier output outside the catalog must never match.
func (c Catalog) Contains(category string) bool {
	for _, entry := range c {
		if entry == category {
			return true
		}
	}
	return false
}
