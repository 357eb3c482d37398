// Package access holds the entitlement checks for privileged wall actions
// (pinning and deleting).
package access

import (
	"fmt"

	"github.com/dmitrijs2005/treehole/internal/client/models"
	"github.com/dmitrijs2005/treehole/internal/common"
)

// CanMutatePrivileged reports whether user may pin or delete messages.
func CanMutatePrivileged(user *models.UserProfile) bool {
	return user != nil && user.IsVip
}

// RequirePrivileged returns common.ErrUpgradeRequired when user may not
// perform action.
func RequirePrivileged(user *models.UserProfile, action string) error {
	if CanMutatePrivileged(user) {
		return nil
	}
	return fmt.Errorf("%s: %w", action, common.ErrUpgradeRequired)
}
