package services

import (
	"github.com/dasch-swiss/mls-app-ng/pkg/models"
	"github.com/dasch-swiss/mls-app-ng/pkg/vocab"
)

// MissingLabel is the label of a property whose label could not be resolved.
const MissingLabel = "?"

// Pseudo-fields of a search row that address the resource itself rather than
// one of its properties.
const (
	FieldID     = "id"
	FieldArkURL = "arkUrl"
	FieldLabel  = "label"
)

// The projections below are pure functions of the raw resource. Properties
// are visited in sorted IRI order so repeated projections are identical.

// ProjectGeneric converts every property of a resource into a PropertyRecord.
// The value kind of the first value decides the record shape: list values
// yield a *models.ListPropertyData, everything else a *models.PropertyData.
// Properties without values are skipped.
func ProjectGeneric(raw *models.RawResource) []models.PropertyRecord {
	records := make([]models.PropertyRecord, 0, len(raw.Properties))
	for _, prop := range raw.PropertyIRIs() {
		values := raw.Values(prop)
		if len(values) == 0 {
			continue
		}

		data := models.PropertyData{
			PropName:    prop,
			Label:       propertyLabel(values),
			Values:      make([]string, len(values)),
			IDs:         make([]string, len(values)),
			Comments:    make([]string, len(values)),
			Permissions: make([]models.Permission, len(values)),
		}
		for i, v := range values {
			base := v.Base()
			data.IDs[i] = base.ID
			data.Comments[i] = base.Comment
			data.Permissions[i] = base.UserHasPermission
		}

		switch values[0].Kind() {
		case models.ValueKindList:
			nodeIRIs := make([]string, len(values))
			for i, v := range values {
				if lv, ok := v.(*models.ListValue); ok {
					nodeIRIs[i] = lv.NodeIRI
					data.Values[i] = lv.NodeLabel
				} else {
					data.Values[i] = v.String()
				}
			}
			records = append(records, &models.ListPropertyData{PropertyData: data, NodeIRIs: nodeIRIs})

		case models.ValueKindLink:
			for i, v := range values {
				data.Values[i] = linkedIRI(v)
			}
			records = append(records, &data)

		default:
			// Text, and the text path for every other kind.
			for i, v := range values {
				data.Values[i] = v.String()
			}
			records = append(records, &data)
		}
	}
	return records
}

// ProjectFlat maps every property with values to its label and its values in
// display form. Identifiers, comments and permissions are dropped.
func ProjectFlat(raw *models.RawResource) models.FlatPropertyMap {
	flat := make(models.FlatPropertyMap, len(raw.Properties))
	for _, prop := range raw.PropertyIRIs() {
		values := raw.Values(prop)
		if len(values) == 0 {
			continue
		}
		strs := make([]string, len(values))
		for i, v := range values {
			strs[i] = v.String()
		}
		flat[prop] = models.FlatProperty{Label: propertyLabel(values), Values: strs}
	}
	return flat
}

// ProjectSearchRows lays out search results as rows whose columns follow
// fields. A column is the resource IRI, ARK URL or label for the pseudo-fields
// id, arkUrl and label, the source IRI for knora-api:hasIncomingLinkValue, and
// the first value of the property otherwise. Columns the resource has no data
// for are nil. A field listed twice fills only its first column.
func ProjectSearchRows(rows []*models.RawResource, fields []string) []models.SearchRow {
	first := make(map[string]int, len(fields))
	for i, f := range fields {
		if _, seen := first[f]; !seen {
			first[f] = i
		}
	}

	out := make([]models.SearchRow, 0, len(rows))
	for _, res := range rows {
		row := make(models.SearchRow, len(fields))
		if res != nil {
			for field, i := range first {
				row[i] = searchCell(res, field)
			}
		}
		out = append(out, row)
	}
	return out
}

func searchCell(res *models.RawResource, field string) *string {
	switch field {
	case FieldID:
		return strPtr(res.ID)
	case FieldLabel:
		return strPtr(res.Label)
	case FieldArkURL:
		if res.ArkURL == "" {
			return nil
		}
		return strPtr(res.ArkURL)
	}

	values := res.Values(field)
	if len(values) == 0 {
		return nil
	}
	if field == vocab.HasIncomingLinkValue {
		return strPtr(linkedIRI(values[0]))
	}
	return strPtr(values[0].String())
}

// ProjectResource wraps the generic projection with the resource metadata.
func ProjectResource(raw *models.RawResource) *models.ResourceData {
	return &models.ResourceData{
		ID:         raw.ID,
		Label:      raw.Label,
		Permission: raw.UserHasPermission,
		ArkURL:     raw.ArkURL,
		Properties: ProjectGeneric(raw),
	}
}

// ProjectLemma wraps the flat projection with the resource metadata.
func ProjectLemma(raw *models.RawResource) *models.LemmaData {
	return &models.LemmaData{
		ID:         raw.ID,
		Label:      raw.Label,
		Permission: raw.UserHasPermission,
		ArkURL:     raw.ArkURL,
		Properties: ProjectFlat(raw),
	}
}

func propertyLabel(values []models.Value) string {
	if label := values[0].Base().PropertyLabel; label != "" {
		return label
	}
	return MissingLabel
}

// linkedIRI is the IRI of the resource on the other end of a link, or the
// display form for values that are not links.
func linkedIRI(v models.Value) string {
	if lv, ok := v.(*models.LinkValue); ok {
		return lv.LinkedResourceIRI
	}
	return v.String()
}

func strPtr(s string) *string { return &s }
