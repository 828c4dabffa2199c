package clinical

import (
	"sort"
	"strings"
)

// Options narrows and orders a record list. Zero values fall back to
// the defaults: no filtering, newest encounter first.
type Options struct {
	Status        string // "all" or a clinical status, case-insensitive
	EncounterType string // "all" or an encounter type, case-insensitive
	SortBy        string // "date" or "status"
	Order         string // "asc" or "desc"
}

func (o Options) normalized() Options {
	if o.Status == "" {
		o.Status = "all"
	}
	if o.EncounterType == "" {
		o.EncounterType = "all"
	}
	if o.SortBy == "" {
		o.SortBy = "date"
	}
	if o.Order == "" {
		o.Order = "desc"
	}
	return o
}

// FilterSort returns a fresh slice of the records matching opts, in the
// requested order. The input slice is never modified and records that
// compare equal keep their relative order.
func FilterSort(records []*ClinicalRecord, opts Options) []*ClinicalRecord {
	opts = opts.normalized()

	out := make([]*ClinicalRecord, 0, len(records))
	for _, rec := range records {
		if !strings.EqualFold(opts.Status, "all") &&
			!strings.EqualFold(rec.CurrentClinicalStatus, opts.Status) {
			continue
		}
		if !strings.EqualFold(opts.EncounterType, "all") &&
			!strings.EqualFold(rec.EncounterType, opts.EncounterType) {
			continue
		}
		out = append(out, rec)
	}

	asc := strings.EqualFold(opts.Order, "asc")
	switch strings.ToLower(opts.SortBy) {
	case "status":
		sort.SliceStable(out, func(i, j int) bool {
			a := strings.ToLower(out[i].CurrentClinicalStatus)
			b := strings.ToLower(out[j].CurrentClinicalStatus)
			if asc {
				return a < b
			}
			return a > b
		})
	default: // date
		sort.SliceStable(out, func(i, j int) bool {
			if asc {
				return out[i].EncounterDate.Before(out[j].EncounterDate)
			}
			return out[i].EncounterDate.After(out[j].EncounterDate)
		})
	}
	return out
}
