package sources

import (
	"strings"

	"github.com/staffgraph/staffgraph/internal/database"
)

// roleKeywords maps role-title keywords to categories. Checked in
// order; more specific buckets come before "coach" so "academy coach"
// lands in academy.
var roleKeywords = []struct {
	category database.RoleCategory
	words    []string
}{
	{database.RoleSportingDirector, []string{"sporting director", "sportdirektor", "director of football", "technical director", "head of sport"}},
	{database.RoleScouting, []string{"scout", "chefscout", "head of recruitment", "kaderplanung"}},
	{database.RoleAcademy, []string{"academy", "nachwuchs", "youth", "u19", "u17", "jugend"}},
	{database.RoleExecutive, []string{"ceo", "president", "chairman", "managing director", "geschäftsführer", "vorstand", "board"}},
	{database.RoleCoach, []string{"coach", "trainer", "manager", "assistant"}},
}

// ClassifyRole buckets a free-text role title into a category. Returns
// the empty category when no keyword matches.
func ClassifyRole(role string) database.RoleCategory {
	lower := strings.ToLower(role)
	for _, bucket := range roleKeywords {
		for _, word := range bucket.words {
			if strings.Contains(lower, word) {
				return bucket.category
			}
		}
	}
	return ""
}
