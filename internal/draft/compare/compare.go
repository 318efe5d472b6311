// Package compare builds side-by-side structural diffs of two drafts for
// the scenario-comparison view. Everything here is a pure function of its
// inputs: no state, no side effects, safe to call repeatedly.
package compare

import "github.com/bistroplan/bistroplan/internal/draft"

// Entry is one field of the report. Numeric fields carry Delta and, when
// the A value is non-zero, PercentChange (in percent, not a fraction).
type Entry struct {
	Section       string   `json:"section"`
	Field         string   `json:"field"`
	ValueA        any      `json:"valueA"`
	ValueB        any      `json:"valueB"`
	Differs       bool     `json:"differs"`
	Delta         *float64 `json:"delta,omitempty"`
	PercentChange *float64 `json:"percentChange,omitempty"`
}

// VendorDiff is the set difference of the two vendor lists, keyed by vendor
// id (or name+company when the id is missing). Vendors are not compared
// field-by-field.
type VendorDiff struct {
	OnlyA []draft.Vendor `json:"onlyA"`
	OnlyB []draft.Vendor `json:"onlyB"`
	Both  []draft.Vendor `json:"both"`
}

// Report is the full comparison of two drafts: every business-plan field in
// fixed section order, then every financial field in fixed category order,
// plus the vendor set diff.
type Report struct {
	DraftA  draft.Summary `json:"draftA"`
	DraftB  draft.Summary `json:"draftB"`
	Entries []Entry       `json:"entries"`
	Vendors VendorDiff    `json:"vendors"`
}

// Drafts compares a against b. Both drafts carry the full fixed schema, so
// the "union of fields" is the schema itself, walked in declaration order.
func Drafts(a, b *draft.Draft) *Report {
	r := &Report{
		DraftA:  a.Summarize(),
		DraftB:  b.Summarize(),
		Entries: []Entry{},
	}

	secA, secB := a.BusinessPlan.Sections(), b.BusinessPlan.Sections()
	for i, sa := range secA {
		for j, fa := range sa.Fields {
			va, vb := *fa.Value, *secB[i].Fields[j].Value
			r.Entries = append(r.Entries, Entry{
				Section: sa.Name,
				Field:   fa.Name,
				ValueA:  va,
				ValueB:  vb,
				Differs: va != vb,
			})
		}
	}

	catA, catB := a.FinancialData.Categories(), b.FinancialData.Categories()
	for i, ca := range catA {
		for j, fa := range ca.Fields {
			va, vb := *fa.Value, *catB[i].Fields[j].Value
			e := Entry{
				Section: ca.Name,
				Field:   fa.Name,
				ValueA:  va,
				ValueB:  vb,
				Differs: va != vb,
			}
			delta := vb - va
			e.Delta = &delta
			if va != 0 {
				pct := delta / va * 100
				e.PercentChange = &pct
			}
			r.Entries = append(r.Entries, e)
		}
	}

	r.Vendors = diffVendors(a.Vendors, b.Vendors)
	return r
}

func diffVendors(va, vb []draft.Vendor) VendorDiff {
	d := VendorDiff{OnlyA: []draft.Vendor{}, OnlyB: []draft.Vendor{}, Both: []draft.Vendor{}}
	inB := make(map[string]bool, len(vb))
	for _, v := range vb {
		inB[v.Key()] = true
	}
	inA := make(map[string]bool, len(va))
	for _, v := range va {
		inA[v.Key()] = true
		if inB[v.Key()] {
			d.Both = append(d.Both, v)
		} else {
			d.OnlyA = append(d.OnlyA, v)
		}
	}
	for _, v := range vb {
		if !inA[v.Key()] {
			d.OnlyB = append(d.OnlyB, v)
		}
	}
	return d
}
