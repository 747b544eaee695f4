package engine

// Customer is a single visitor to the system. Timestamps are whole seconds
// since the start of the run; nil means the event has not happened.
type Customer struct {
	ID               string `json:"id"`
	ArrivalTime      int64  `json:"arrivalTime"`
	QueueStartTime   *int64 `json:"queueStartTime"`
	ServiceStartTime *int64 `json:"serviceStartTime"`
	LeavingTime      *int64 `json:"leavingTime"`
}

// WaitingTime is the time spent in the queue. Customers who went straight
// to a free server have no queue start and report 0.
func (c *Customer) WaitingTime() int64 {
	if c.ServiceStartTime == nil || c.QueueStartTime == nil {
		return 0
	}
	return diff(c.QueueStartTime, c.ServiceStartTime)
}

// ServiceTime is the time spent at a server. Without a recorded service
// start it falls back to the whole stay.
func (c *Customer) ServiceTime() int64 {
	if c.ServiceStartTime != nil && c.LeavingTime != nil {
		return diff(c.ServiceStartTime, c.LeavingTime)
	}
	return diff(&c.ArrivalTime, c.LeavingTime)
}

// TotalTime is the time from arrival to leaving, 0 while still in the system.
func (c *Customer) TotalTime() int64 {
	return diff(&c.ArrivalTime, c.LeavingTime)
}

// diff returns end-start, or 0 when either side is unset.
func diff(start, end *int64) int64 {
	if start == nil || end == nil {
		return 0
	}
	return *end - *start
}

func stamp(t int64) *int64 {
	return &t
}
