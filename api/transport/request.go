package transport

// CreateTaskRequest is the structured form of a task-creation command.
// Whatever surface parses free text (chat bot, CLI) produces this shape.
type CreateTaskRequest struct {
	AssigneeHandle string `json:"assignee_handle"`
	Priority       string `json:"priority"`
	Text           string `json:"text"`
	Deadline       string `json:"deadline"`
	Comment        string `json:"comment"`
	Recurring      bool   `json:"is_recurring"`
	RecurPeriod    string `json:"recurring_period"`
	MessageRef     int64  `json:"message_ref"`
}

type EditTaskRequest struct {
	Text        string `json:"text"`
	Priority    string `json:"priority"`
	Deadline    string `json:"deadline"`
	Comment     string `json:"comment"`
	Recurring   bool   `json:"is_recurring"`
	RecurPeriod string `json:"recurring_period"`
}

type ChangeStatusRequest struct {
	Status string `json:"status"`
}

type CommentRequest struct {
	Text string `json:"text"`
}

type SubtaskRequest struct {
	Text string `json:"text"`
}

type RegisterUserRequest struct {
	ID       int64  `json:"id"`
	Handle   string `json:"handle"`
	FullName string `json:"full_name"`
	Role     string `json:"role"`
}
