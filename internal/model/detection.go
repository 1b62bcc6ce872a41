package model

// PathogenDetection joins a sampling route to a pathogen species with the
// metabarcoding read count observed on that route.  At most one detection
// exists per (route, species) pair; re-ingesting a sample overwrites the
// read count rather than duplicating the row.  Zero read counts are stored
// as-is; filtering them out is a presentation concern.
type PathogenDetection struct {
	ID                uint64 `json:"id"`
	RouteID           uint64 `json:"route_id"`
	PathogenSpeciesID uint64 `json:"pathogen_species_id"`
	ReadCount         int    `json:"read_count"`
}

// DetectionWithSpecies is the read-side shape returned by listings: the
// detection joined with its species reference fields.
type DetectionWithSpecies struct {
	PathogenDetection
	SpeciesName string `json:"species_name"`
	CommonName  string `json:"common_name"`
	DiseaseType string `json:"disease_type"`
}
