package service

import "time"

// LogFilter narrows the command log by time range and type.
type LogFilter struct {
	From time.Time // inclusive; zero means no lower bound
	To   time.Time // inclusive; zero means no upper bound
	Type string    // "", COMMAND_SENT, COMMAND_FAILED, STATE_CHANGED
}

// HistoryParams narrows a sensor history query.
type HistoryParams struct {
	Start time.Time // inclusive; zero means no lower bound
	End   time.Time // inclusive; zero means no upper bound
	Limit int       // <= 0 means DefaultHistoryLimit
}

// ControlRequest is a request to drive the switch. OperatorID is zero for
// requests made while operator auth is off.
type ControlRequest struct {
	Value      int
	Device     string
	OperatorID int
	Operator   string
}
