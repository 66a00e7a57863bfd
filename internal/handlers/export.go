package handlers

import (
	"encoding/csv"
	"log"
	"net/http"
	"strconv"

	"github.com/staffgraph/staffgraph/internal/utils"
)

// exportBatchSize bounds one export query; the full set is paged through.
const exportBatchSize = 500

// handleExportRelationships handles GET /api/relationships/export.csv.
// One row per relationship, strongest first, with the effective label.
func (h *APIHandler) handleExportRelationships(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="relationships.csv"`)

	cw := csv.NewWriter(w)
	header := []string{
		"person_a", "person_b", "score", "label",
		"shared_orgs", "total_years", "most_recent_org", "most_recent_start",
	}
	if err := cw.Write(header); err != nil {
		log.Printf("APIHandler: CSV export failed: %v", err)
		return
	}

	offset := 0
	for {
		rels, _, err := h.relService.List(0, exportBatchSize, offset)
		if err != nil {
			log.Printf("APIHandler: CSV export failed at offset %d: %v", offset, err)
			return
		}
		for _, rel := range rels {
			recentStart := ""
			if rel.MostRecentStart != nil {
				recentStart = rel.MostRecentStart.Format("2006-01-02")
			}
			row := []string{
				rel.PersonA.Name,
				rel.PersonB.Name,
				strconv.Itoa(rel.Score),
				rel.EffectiveLabel(),
				strconv.Itoa(rel.OrgCount),
				utils.FormatYears(rel.TotalYears),
				rel.MostRecentOrg,
				recentStart,
			}
			if err := cw.Write(row); err != nil {
				log.Printf("APIHandler: CSV export failed: %v", err)
				return
			}
		}
		if len(rels) < exportBatchSize {
			break
		}
		offset += exportBatchSize
	}
	cw.Flush()
}
