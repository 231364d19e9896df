package services

// requireOwner fails with a not-found error unless userID owns the
// resource. Absent and foreign resources look the same to the caller.
func requireOwner(ownerID, userID int64, what string) error {
	if ownerID != userID {
		return notFoundError("%s not found or user not authorized", what)
	}
	return nil
}
