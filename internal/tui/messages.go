package tui

type statusMsg struct {
	offset     int
	brightness int
	err        error
}

type adjustedMsg struct {
	status string
	err    error
}

type offsetChangedMsg struct {
	offset int
}

type refreshTickMsg struct{}
