package reservation

import (
	"fmt"

	"campusreserve/internal/validation"
	"campusreserve/internal/workflow"
)

// Messages are the requester-facing notification texts for reservations.
func Messages() workflow.Messages[Request] {
	return workflow.Messages[Request]{
		Submitted: func(r Request) string {
			return fmt.Sprintf("Your reservation of %s was received and is pending review.", describe(r))
		},
		Approved: func(r Request) string {
			text := fmt.Sprintf("Your reservation of %s was approved.", describe(r))
			if r.ResponseMessage != nil {
				text += " " + *r.ResponseMessage
			}
			return text
		},
		Rejected: func(r Request) string {
			reason := ""
			if r.ResponseMessage != nil {
				reason = *r.ResponseMessage
			}
			return fmt.Sprintf("Your reservation of %s was rejected: %s", describe(r), reason)
		},
	}
}

func describe(r Request) string {
	name := r.ResourceName
	if name == "" {
		name = fmt.Sprintf("resource %d", r.ResourceID)
	}
	date, from := validation.SplitSlot(r.Start, nil)
	_, to := validation.SplitSlot(r.End, nil)
	return fmt.Sprintf("%s on %s from %s to %s", name, date, from, to)
}
