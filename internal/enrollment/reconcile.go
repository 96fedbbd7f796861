package enrollment

import (
	"sort"
	"strings"

	"edpulse/pkg/contracts/domain"
)

// displaySuffixes are trailing marker tokens stripped from canonical names
// during the cosmetic cleanup pass. The strip is presentation only and never
// affects identity, which is anchored on the entity code.
var displaySuffixes = []string{
	" Education Campus",
	" High School",
	" Campus",
}

// FilterScope restricts a record population to the analysis scope: a single
// fixed parent group code and the grades under analysis. It runs before
// reconciliation so the reconciler only works over the relevant population.
func FilterScope(records []domain.EnrollmentRecord, groupCode string, grades map[domain.GradeLevel]bool) []domain.EnrollmentRecord {
	out := make([]domain.EnrollmentRecord, 0, len(records))
	for _, r := range records {
		if r.GroupCode != groupCode {
			continue
		}
		if !grades[r.Grade] {
			continue
		}
		out = append(out, r)
	}
	return out
}

// ReconcileIdentities detects entities whose display name drifted across
// years while their code stayed stable, and rewrites every historical
// record's name to the most recent year's name. Identity is anchored on the
// entity code, never on the name: a name reused under a different code is
// reported as a warning but the codes are never merged.
//
// The pass is one-shot batch: the full collision map is built up front, then
// a single rewrite runs over the records. The source data has no transitive
// renames, so no iterative identity-chasing is needed.
func ReconcileIdentities(records []domain.EnrollmentRecord) ([]domain.EnrollmentRecord, []IdentityWarning) {
	// Latest year each distinct (code, name) pair was observed.
	type nameYears map[string]int
	observed := make(map[string]nameYears)
	latestYear := make(map[string]int)
	for _, r := range records {
		ny, ok := observed[r.EntityCode]
		if !ok {
			ny = make(nameYears)
			observed[r.EntityCode] = ny
		}
		if r.Year > ny[r.EntityName] {
			ny[r.EntityName] = r.Year
		}
		if r.Year > latestYear[r.EntityCode] {
			latestYear[r.EntityCode] = r.Year
		}
	}

	var warnings []IdentityWarning

	// Canonical name per drifted code: the name observed in the code's most
	// recent year. If that year carries more than one distinct name the
	// heuristic cannot pick uniquely; take the lexicographically smallest and
	// warn.
	canonical := make(map[string]string)
	codes := make([]string, 0, len(observed))
	for code := range observed {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	for _, code := range codes {
		names := observed[code]
		if len(names) < 2 {
			continue
		}
		var candidates []string
		for name, year := range names {
			if year == latestYear[code] {
				candidates = append(candidates, name)
			}
		}
		sort.Strings(candidates)
		canonical[code] = candidates[0]
		if len(candidates) > 1 {
			warnings = append(warnings, IdentityWarning{
				Kind:       WarnAmbiguousCanonicalName,
				EntityCode: code,
				Names:      candidates,
				Resolution: candidates[0],
			})
		}
	}

	// Detect one name observed under distinct codes. Deliberate scope limit:
	// these codes are reported, never merged.
	codesByName := make(map[string]map[string]bool)
	for code, names := range observed {
		for name := range names {
			if codesByName[name] == nil {
				codesByName[name] = make(map[string]bool)
			}
			codesByName[name][code] = true
		}
	}
	sharedNames := make([]string, 0)
	for name, cs := range codesByName {
		if len(cs) > 1 {
			sharedNames = append(sharedNames, name)
		}
	}
	sort.Strings(sharedNames)
	for _, name := range sharedNames {
		cs := make([]string, 0, len(codesByName[name]))
		for code := range codesByName[name] {
			cs = append(cs, code)
		}
		sort.Strings(cs)
		warnings = append(warnings, IdentityWarning{
			Kind:       WarnNameSharedByCodes,
			EntityName: name,
			Codes:      cs,
			Resolution: "codes kept separate",
		})
	}

	// Single rewrite pass, then the cosmetic suffix strip.
	out := make([]domain.EnrollmentRecord, len(records))
	for i, r := range records {
		if name, drifted := canonical[r.EntityCode]; drifted {
			r.EntityName = name
		}
		r.EntityName = CleanDisplayName(r.EntityName)
		out[i] = r
	}
	return out, warnings
}

// CleanDisplayName strips a single trailing suffix marker from a display
// name. "Anacostia High School" renders as "Anacostia"; names without a
// marker pass through unchanged.
func CleanDisplayName(name string) string {
	trimmed := strings.TrimSpace(name)
	for _, suffix := range displaySuffixes {
		if strings.HasSuffix(trimmed, suffix) && len(trimmed) > len(suffix) {
			return strings.TrimSpace(strings.TrimSuffix(trimmed, suffix))
		}
	}
	return trimmed
}
