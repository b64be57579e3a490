package types

// JobStatus is the state of an asynchronous backend job
type JobStatus int

const (
	JobInProgress JobStatus = 1
	JobComplete   JobStatus = 2
	JobError      JobStatus = 3
)
