package api

import (
	"github.com/staffgraph/staffgraph/internal/database"
	"github.com/staffgraph/staffgraph/internal/dates"
	"github.com/staffgraph/staffgraph/internal/facts"
	"github.com/staffgraph/staffgraph/internal/services"
	"github.com/staffgraph/staffgraph/internal/utils"
)

// PersonToSummary converts a database Person to its compact representation.
func PersonToSummary(p database.Person) PersonSummary {
	return PersonSummary{
		UUID:         p.UUID,
		Name:         p.Name,
		RoleCategory: string(p.RoleCategory),
	}
}

// PersonsToSummaries converts a slice of Persons to summaries.
func PersonsToSummaries(persons []database.Person) []PersonSummary {
	items := make([]PersonSummary, len(persons))
	for i, p := range persons {
		items[i] = PersonToSummary(p)
	}
	return items
}

// TenureToItem converts a stored tenure, rendering each boundary at its
// stored precision.
func TenureToItem(t database.Tenure) TenureItem {
	return TenureItem{
		OrgName: t.OrgName,
		OrgKey:  t.OrgKey,
		Role:    t.Role,
		Start:   dates.FromTime(t.StartDate, dates.ParsePrecision(t.StartPrecision)).String(),
		End:     dates.FromTime(t.EndDate, dates.ParsePrecision(t.EndPrecision)).String(),
		Period:  utils.FormatPeriod(t.StartDate, t.EndDate),
		Source:  t.Source,
	}
}

// PersonToDetail builds the full person view from the stored person and
// the merged fact resolution.
func PersonToDetail(p database.Person, merged facts.Resolved) PersonDetail {
	tenures := make([]TenureItem, len(p.Tenures))
	for i, t := range p.Tenures {
		tenures[i] = TenureToItem(t)
	}
	fields := merged.Fields
	if fields == nil {
		fields = map[string]facts.FieldResolution{}
	}
	return PersonDetail{
		UUID:         p.UUID,
		Name:         p.Name,
		RoleCategory: string(p.RoleCategory),
		FirstSeenAt:  p.FirstSeenAt,
		Tenures:      tenures,
		Facts:        fields,
	}
}

// OverlapToItem converts a stored overlap event.
func OverlapToItem(o database.RelationshipOverlap) OverlapItem {
	return OverlapItem{
		OrgName:    o.OrgName,
		StartDate:  o.StartDate,
		EndDate:    o.EndDate,
		Years:      o.Years,
		Likelihood: o.Likelihood,
		SourceA:    o.SourceA,
		SourceB:    o.SourceB,
	}
}

// RelationshipToItem converts a relationship with preloaded persons and
// overlaps. The label field always carries the effective label; the
// curated override is exposed separately so clients can tell them apart.
func RelationshipToItem(r database.Relationship) RelationshipItem {
	overlaps := make([]OverlapItem, len(r.Overlaps))
	for i, o := range r.Overlaps {
		overlaps[i] = OverlapToItem(o)
	}
	return RelationshipItem{
		UUID:            r.UUID,
		PersonA:         PersonToSummary(r.PersonA),
		PersonB:         PersonToSummary(r.PersonB),
		Score:           r.Score,
		OrgCount:        r.OrgCount,
		TotalYears:      r.TotalYears,
		EventCount:      r.EventCount,
		MostRecentOrg:   r.MostRecentOrg,
		MostRecentStart: r.MostRecentStart,
		Label:           r.EffectiveLabel(),
		CuratedLabel:    r.CuratedLabel,
		Overlaps:        overlaps,
	}
}

// RelationshipsToItems converts a slice of relationships.
func RelationshipsToItems(rels []database.Relationship) []RelationshipItem {
	items := make([]RelationshipItem, len(rels))
	for i, r := range rels {
		items[i] = RelationshipToItem(r)
	}
	return items
}

// ConnectionToItem converts one relationship seen from a person's side.
func ConnectionToItem(c services.Connection) ConnectionItem {
	overlaps := make([]OverlapItem, len(c.Relationship.Overlaps))
	for i, o := range c.Relationship.Overlaps {
		overlaps[i] = OverlapToItem(o)
	}
	return ConnectionItem{
		Other:           PersonToSummary(c.Other),
		Score:           c.Relationship.Score,
		Label:           c.Relationship.EffectiveLabel(),
		OrgCount:        c.Relationship.OrgCount,
		TotalYears:      c.Relationship.TotalYears,
		MostRecentOrg:   c.Relationship.MostRecentOrg,
		MostRecentStart: c.Relationship.MostRecentStart,
		Overlaps:        overlaps,
	}
}

// RebuildToResponse converts a rebuild audit record.
func RebuildToResponse(r database.RelationshipRebuild) RebuildResponse {
	return RebuildResponse{
		Relationships:  r.Relationships,
		Overlaps:       r.Overlaps,
		TenuresSkipped: r.TenuresSkipped,
		TriggeredBy:    r.TriggeredBy,
		DurationMs:     r.DurationMs,
	}
}
