package model

// Status is a record's position in the fixed lifecycle.
type Status string

var (
	// StatusNew indicates that the record was just created and nobody followed up yet
	StatusNew = Status("new")
	// StatusContacted indicates that the counterpart has been contacted
	StatusContacted = Status("contacted")
	// StatusCVSent indicates that the CV has been forwarded
	StatusCVSent = Status("cv_sent")
	// StatusInterview indicates that an interview has been scheduled or held
	StatusInterview = Status("interview")
	// StatusClosed indicates that the record reached a terminal outcome
	StatusClosed = Status("closed")
)

// statusRank orders the lifecycle: new -> contacted -> cv_sent/interview -> closed.
// cv_sent and interview share a rank; moving between them is a forward move.
var statusRank = map[Status]int{
	StatusNew:       0,
	StatusContacted: 1,
	StatusCVSent:    2,
	StatusInterview: 2,
	StatusClosed:    3,
}

// Valid reports whether s is a member of the lifecycle enum.
func (s Status) Valid() bool {
	_, ok := statusRank[s]
	return ok
}

// Rank returns the lifecycle position of s. Callers must check Valid first;
// an unknown status ranks below every valid one.
func (s Status) Rank() int {
	r, ok := statusRank[s]
	if !ok {
		return -1
	}
	return r
}

// Statuses lists every valid status in lifecycle order.
func Statuses() []Status {
	return []Status{StatusNew, StatusContacted, StatusCVSent, StatusInterview, StatusClosed}
}
