package repository

// Repos bundles every repository over one querying handle. Built once per
// ingest transaction so all pipeline reads and writes share it.
type Repos struct {
	Meters        *MeterRepository
	Readings      *ReadingRepository
	Templates     *TemplateRepository
	Summaries     *SummaryRepository
	Targets       *TargetRepository
	Notifications *NotificationRepository
}

// NewRepos builds the bundle over a db or transaction handle.
func NewRepos(q DBTX) *Repos {
	return &Repos{
		Meters:        NewMeterRepository(q),
		Readings:      NewReadingRepository(q),
		Templates:     NewTemplateRepository(q),
		Summaries:     NewSummaryRepository(q),
		Targets:       NewTargetRepository(q),
		Notifications: NewNotificationRepository(q),
	}
}
