package config

import (
	"sourcing.GO/cron/jobs"
)

// Map of job names to job functions
type CronJob struct {
	Schedule string
	Job      func(...string)
}

var CronJobs = map[string]CronJob{
	"orphanreport": {Schedule: "0 6 * * *", Job: jobs.OrphanReportJob},
	// Add more jobs here
}
