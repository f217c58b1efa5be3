package repository

import "fmt"

// scoped fills the single %s in query with a team filter on alias.
// Rows are visible when they belong to the caller's team, or to the caller
// themselves when they have no team. The caller's user id is bound to $1.
func scoped(query, alias string) string {
	filter := fmt.Sprintf(`(%[1]s.team_id = (SELECT team_id FROM profiles WHERE id=$1)
            OR (%[1]s.user_id = $1 AND (SELECT team_id FROM profiles WHERE id=$1) IS NULL))`, alias)
	return fmt.Sprintf(query, filter)
}
