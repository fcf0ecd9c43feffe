// Package bulletin extracts structured records from campus placement
// broadcasts: job postings, shortlisting notices and placement updates.
//
// Quick start:
//
//	b, err := bulletin.New()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	v, _ := b.Parse("[Shortlisting]", "**Company:** Acme\nJohn Doe (12345678)")
//	fmt.Println(v.Category, v.Company, len(v.Roster)) // shortlisting Acme 1
//
// Extraction is total: any text yields a best-effort View. The only error is
// a notice with neither a message nor a category.
//
// A Bulletin is immutable after New and safe for concurrent use.
package bulletin
