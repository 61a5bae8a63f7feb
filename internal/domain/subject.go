package domain

// SubjectKind identifies what an efficiency figure is computed for.
type SubjectKind string

const (
	SubjectWorker SubjectKind = "WORKER"
	SubjectLeader SubjectKind = "LEADER"
	SubjectTeam   SubjectKind = "TEAM"
)

// IsValid checks if the kind is one of the allowed values.
func (k SubjectKind) IsValid() bool {
	return k == SubjectWorker || k == SubjectLeader || k == SubjectTeam
}

// SubjectRef points at a single worker, leader or team.
type SubjectRef struct {
	Kind SubjectKind `json:"kind"`
	ID   string      `json:"id"`
}

// WorkerProfile is a worker together with its current membership count.
type WorkerProfile struct {
	User      User
	TeamCount int
}

// LeaderProfile is a leader together with the size of the teams it leads.
type LeaderProfile struct {
	User           User
	TeamsCount     int
	EmployeesCount int
}

// TeamProfile is a team together with its leader name and member count.
type TeamProfile struct {
	Team         Team
	LeaderName   string
	MembersCount int
}

// OutcomeCounts holds the terminal task outcomes of one subject.
type OutcomeCounts struct {
	Accepted   int
	Terminated int
	Failed     int
}

// TasksCount returns the number of completed tasks (accepted or terminated).
func (c OutcomeCounts) TasksCount() int {
	return c.Accepted + c.Terminated
}

// EfficiencyRate returns completed / (completed + failed), or 0 when nothing finished.
func (c OutcomeCounts) EfficiencyRate() float64 {
	completed := c.TasksCount()
	denominator := completed + c.Failed
	if denominator <= 0 || completed < 0 {
		return 0
	}
	return float64(completed) / float64(denominator)
}
