package domain

// Assignment links a task either to one curator or, when CuratorEmail is
// empty, to a (subject, department, role) group template. Zero ids mean the
// attribute was not known at creation time.
type Assignment struct {
	ID           int64  `json:"assignment_id"`
	TaskID       string `json:"id_task"`
	SubjectID    int64  `json:"subject_id,omitempty"`
	DepartmentID int64  `json:"department_id,omitempty"`
	RoleID       int64  `json:"role_id,omitempty"`
	CuratorEmail string `json:"mail,omitempty"`
	AuthorEmail  string `json:"mail_author"`
}

// IsTemplate reports whether the assignment addresses a group rather than a
// specific curator.
func (a *Assignment) IsTemplate() bool {
	return a.CuratorEmail == ""
}

// IndividualAssignment snapshots the curator's own classification.
func IndividualAssignment(taskID, authorEmail string, c *Curator) *Assignment {
	return &Assignment{
		TaskID:       taskID,
		SubjectID:    c.SubjectID,
		DepartmentID: c.DepartmentID,
		RoleID:       c.RoleID,
		CuratorEmail: c.Email,
		AuthorEmail:  authorEmail,
	}
}

// GroupAssignments builds one template row per distinct department and role
// pair, in the order the ids were first given.
func GroupAssignments(taskID, authorEmail string, subjectID int64, departmentIDs, roleIDs []int64) []*Assignment {
	departmentIDs, roleIDs = uniqueIDs(departmentIDs), uniqueIDs(roleIDs)
	out := make([]*Assignment, 0, len(departmentIDs)*len(roleIDs))
	for _, dep := range departmentIDs {
		for _, role := range roleIDs {
			out = append(out, &Assignment{
				TaskID:       taskID,
				SubjectID:    subjectID,
				DepartmentID: dep,
				RoleID:       role,
				AuthorEmail:  authorEmail,
			})
		}
	}
	return out
}

func uniqueIDs(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
