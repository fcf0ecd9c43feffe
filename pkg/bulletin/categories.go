package bulletin

import "github.com/crimson-sun/bulletin/internal/engine/category"

// Categories returns the canonical categories NormalizeCategory produces.
// Any other input passes through trimmed and lowercased.
func Categories() []string {
	return []string{
		category.JobPosting,
		category.Shortlisting,
		category.Update,
		category.PlacementOffer,
	}
}
