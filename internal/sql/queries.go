// Package sql embeds the roster schema migrations and queries.
package sql

import (
	"embed"
)

//go:embed migrations/*.sql
var Migrations embed.FS

//go:embed queries/register_run.sql
var RegisterRun string

//go:embed queries/update_run_status.sql
var UpdateRunStatus string

//go:embed queries/complete_run.sql
var CompleteRun string

//go:embed queries/deactivate_older_runs.sql
var DeactivateOlderRuns string

//go:embed queries/activate_run.sql
var ActivateRun string

//go:embed queries/delete_run.sql
var DeleteRun string

//go:embed queries/active_run.sql
var ActiveRun string
