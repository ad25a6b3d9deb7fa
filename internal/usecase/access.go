package usecase

import "github.com/St1cky1/task-portal/internal/entity"

func canViewTask(session *entity.Session, task *entity.Task) bool {
	if session.Tier.SeesAllTasks() {
		return true
	}
	switch session.Role {
	case entity.RoleAdmin:
		return true
	case entity.RoleManager:
		return task.CreatedBy == session.UserID || task.AssigneeID == session.UserID
	case entity.RoleStaff:
		return task.AssigneeID == session.UserID
	default:
		return false
	}
}

// canEditTask - field edits beyond status belong to admins and to managers
// who can see the task.
func canEditTask(session *entity.Session, task *entity.Task) bool {
	switch session.Role {
	case entity.RoleAdmin:
		return true
	case entity.RoleManager:
		return canViewTask(session, task)
	case entity.RoleStaff:
		return false
	default:
		return false
	}
}

func canDeleteTask(session *entity.Session, task *entity.Task) bool {
	switch session.Role {
	case entity.RoleAdmin:
		return true
	case entity.RoleManager:
		return task.CreatedBy == session.UserID
	case entity.RoleStaff:
		return false
	default:
		return false
	}
}
