package pds

import (
	"fmt"
	"strings"
)

// Label keys every locale table must provide.
const (
	labelProduct          = "product"
	labelRevision         = "revision"
	labelApprovalsHeader  = "approvals_header"
	labelPropertiesHeader = "properties_header"
	labelComparisonHeader = "comparison_header"
	labelVersus           = "vs"
	labelOnlyIn           = "only_in"
	labelCommon           = "common"
	labelNone             = "none"
	labelUnparsedNote     = "unparsed_note"
)

// Renderer produces the final localized text block for one record (summary)
// or two (comparison).
type Renderer struct {
	labels LabelLookup
}

// NewRenderer creates a renderer backed by the given label lookup.
func NewRenderer(labels LabelLookup) *Renderer {
	return &Renderer{labels: labels}
}

// Render returns summary output when recordB is nil, comparison output
// otherwise. It fails with *UnsupportedLocaleError when the locale has no
// label table; there is no silent fallback.
func (r *Renderer) Render(recordA, recordB *ProductRecord, locale string) (string, error) {
	table, ok := r.labels.Labels(locale)
	if !ok {
		return "", &UnsupportedLocaleError{Locale: locale}
	}
	if recordB == nil {
		return r.renderSummary(recordA, table), nil
	}
	return r.renderComparison(recordA, recordB, table), nil
}

func (r *Renderer) renderSummary(record *ProductRecord, labels map[string]string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "**%s:** %s\n", labels[labelProduct], record.DisplayName())
	if record.Revision != "" {
		fmt.Fprintf(&b, "**%s:** %s\n", labels[labelRevision], record.Revision)
	}

	fmt.Fprintf(&b, "\n**%s:**\n", labels[labelApprovalsHeader])
	if len(record.Approvals) == 0 {
		fmt.Fprintf(&b, "- %s\n", labels[labelNone])
	} else {
		fmt.Fprintf(&b, "- %s\n", strings.Join(record.Approvals, "; "))
	}

	fmt.Fprintf(&b, "\n**%s:**\n", labels[labelPropertiesHeader])
	if len(record.Properties) == 0 {
		fmt.Fprintf(&b, "- %s\n", labels[labelNone])
	} else {
		for _, p := range record.Properties {
			fmt.Fprintf(&b, "- %s: %s\n", p.Name, formatValue(p.Value, p.Unit))
		}
	}

	r.appendUnparsedNote(&b, labels, record.Diagnostics.DiscardedRuns)
	return b.String()
}

func (r *Renderer) renderComparison(recordA, recordB *ProductRecord, labels map[string]string) string {
	var b strings.Builder

	nameA, nameB := recordA.DisplayName(), recordB.DisplayName()
	fmt.Fprintf(&b, "**%s:** %s %s %s\n",
		labels[labelComparisonHeader],
		describeProduct(nameA, recordA.Revision, labels),
		labels[labelVersus],
		describeProduct(nameB, recordB.Revision, labels),
	)

	fmt.Fprintf(&b, "\n**%s:**\n", labels[labelPropertiesHeader])
	rows := BuildComparisonRows(recordA, recordB)
	if len(rows) == 0 {
		fmt.Fprintf(&b, "- %s\n", labels[labelNone])
	}
	for _, row := range rows {
		switch row.Present {
		case PresenceBoth:
			fmt.Fprintf(&b, "- %s: %s %s %s\n", row.Name,
				formatValue(row.ValueA, row.UnitA), labels[labelVersus], formatValue(row.ValueB, row.UnitB))
		case PresenceOnlyA:
			fmt.Fprintf(&b, "- %s: %s (%s %s)\n", row.Name,
				formatValue(row.ValueA, row.UnitA), labels[labelOnlyIn], nameA)
		case PresenceOnlyB:
			fmt.Fprintf(&b, "- %s: %s (%s %s)\n", row.Name,
				formatValue(row.ValueB, row.UnitB), labels[labelOnlyIn], nameB)
		}
	}

	fmt.Fprintf(&b, "\n**%s:**\n", labels[labelApprovalsHeader])
	common, onlyA, onlyB := splitApprovals(recordA.Approvals, recordB.Approvals)
	if len(common) == 0 && len(onlyA) == 0 && len(onlyB) == 0 {
		fmt.Fprintf(&b, "- %s\n", labels[labelNone])
	}
	if len(common) > 0 {
		fmt.Fprintf(&b, "- %s: %s\n", labels[labelCommon], strings.Join(common, "; "))
	}
	if len(onlyA) > 0 {
		fmt.Fprintf(&b, "- %s %s: %s\n", labels[labelOnlyIn], nameA, strings.Join(onlyA, "; "))
	}
	if len(onlyB) > 0 {
		fmt.Fprintf(&b, "- %s %s: %s\n", labels[labelOnlyIn], nameB, strings.Join(onlyB, "; "))
	}

	r.appendUnparsedNote(&b, labels, recordA.Diagnostics.DiscardedRuns+recordB.Diagnostics.DiscardedRuns)
	return b.String()
}

func (r *Renderer) appendUnparsedNote(b *strings.Builder, labels map[string]string, discarded int) {
	if discarded > 0 {
		fmt.Fprintf(b, "\n_(%s: %d)_\n", labels[labelUnparsedNote], discarded)
	}
}

func describeProduct(name, revision string, labels map[string]string) string {
	if revision == "" {
		return name
	}
	return fmt.Sprintf("%s (%s %s)", name, labels[labelRevision], revision)
}

func formatValue(value, unit string) string {
	if unit == "" {
		return value
	}
	return value + " " + unit
}

// BuildComparisonRows aligns two records' properties on normalized name.
// Rows follow record A's source order; properties present only in B are
// appended afterwards in B's order. Every normalized name present in either
// record appears in exactly one row.
func BuildComparisonRows(recordA, recordB *ProductRecord) []ComparisonRow {
	byNameB := make(map[string]PropertyRecord, len(recordB.Properties))
	for _, p := range recordB.Properties {
		if _, ok := byNameB[p.NormalizedName]; !ok {
			byNameB[p.NormalizedName] = p
		}
	}

	rows := []ComparisonRow{}
	emitted := make(map[string]bool)

	for _, pa := range recordA.Properties {
		if emitted[pa.NormalizedName] {
			continue
		}
		emitted[pa.NormalizedName] = true

		row := ComparisonRow{
			NormalizedName: pa.NormalizedName,
			Name:           pa.Name,
			ValueA:         pa.Value,
			UnitA:          pa.Unit,
			Present:        PresenceOnlyA,
		}
		if pb, ok := byNameB[pa.NormalizedName]; ok {
			row.ValueB = pb.Value
			row.UnitB = pb.Unit
			row.Present = PresenceBoth
		}
		rows = append(rows, row)
	}

	for _, pb := range recordB.Properties {
		if emitted[pb.NormalizedName] {
			continue
		}
		emitted[pb.NormalizedName] = true
		rows = append(rows, ComparisonRow{
			NormalizedName: pb.NormalizedName,
			Name:           pb.Name,
			ValueB:         pb.Value,
			UnitB:          pb.Unit,
			Present:        PresenceOnlyB,
		})
	}

	return rows
}

// splitApprovals partitions two approval lists into their intersection and
// per-product remainders, preserving each list's order.
func splitApprovals(approvalsA, approvalsB []string) (common, onlyA, onlyB []string) {
	setB := make(map[string]bool, len(approvalsB))
	for _, code := range approvalsB {
		setB[strings.ToLower(code)] = true
	}
	setA := make(map[string]bool, len(approvalsA))
	for _, code := range approvalsA {
		setA[strings.ToLower(code)] = true
	}

	for _, code := range approvalsA {
		if setB[strings.ToLower(code)] {
			common = append(common, code)
		} else {
			onlyA = append(onlyA, code)
		}
	}
	for _, code := range approvalsB {
		if !setA[strings.ToLower(code)] {
			onlyB = append(onlyB, code)
		}
	}
	return common, onlyA, onlyB
}
