package model

// PathogenSpecies is a row of the reference species list.  The table is
// maintained by admins; the ingestion pipeline only reads it and reports
// unmatched species names back to the uploader.
type PathogenSpecies struct {
	ID          uint64 `json:"id"`
	SpeciesName string `json:"species_name"`
	CommonName  string `json:"common_name"`
	DiseaseType string `json:"disease_type"`
}
