package services

import (
	"errors"
	"fmt"

	"forms-service/internal/repositories"
	"forms-service/pkg/apperror"
)

// Domain errors shared by the REST handlers and the realtime dispatcher.
var (
	ErrNotAuthenticated     = apperror.Unauthenticated("You are not logged in. Please log in to get access")
	ErrInvalidCredentials   = apperror.Unauthenticated("email or password is incorrect")
	ErrUserBlocked          = apperror.Unauthenticated("User is blocked")
	ErrUserGone             = apperror.Unauthenticated("The user belonging to this token no longer exists")
	ErrPasswordChanged      = apperror.Unauthenticated("User recently changed password! Please log in again")
	ErrInvalidToken         = apperror.Unauthenticated("Invalid token. Please try again!")
	ErrEmailTaken           = apperror.Conflict("A user with this email already exists")
	ErrNoPermission         = apperror.Forbidden("You do not have permission to perform this action")
	ErrAccessDenied         = apperror.Forbidden("Access denied")
	ErrCannotUpdateTemplate = apperror.Forbidden("You cannot update this template")
	ErrCannotDeleteTemplate = apperror.Forbidden("You cannot delete this template")
	ErrCannotSubmitForm     = apperror.Forbidden("You are not allowed to submit this form")
	ErrTemplateNotFound     = apperror.NotFound("Template not found")
	ErrFormNotFound         = apperror.NotFound("Form not found")
	ErrCommentEmpty         = apperror.Validation("Comment cannot be empty")
	ErrCommentEdit          = apperror.NotFound("Comment not found or not authorized to edit")
	ErrCommentDelete        = apperror.NotFound("Comment not found or not authorized to delete")
	ErrAlreadyLiked         = apperror.Conflict("You already liked this template")
	ErrNotLiked             = apperror.Conflict("You haven't liked this template yet")
	ErrNoUserIDs            = apperror.Validation("No user IDs provided")
	ErrNoTemplateIDs        = apperror.Validation("No template IDs provided")
	ErrMissingQuery         = apperror.Validation("Missing search query")
	ErrNoImage              = apperror.Validation("No image file provided")
	ErrNotAnImage           = apperror.Validation("Not an image! Please upload only images")
	ErrImageTooLarge        = apperror.Validation("Image must be 5MB or smaller")
	ErrImageTooManyPixels   = apperror.Validation("Image must be 25 megapixels or smaller")
)

// storeError maps a repository error: ErrNotFound becomes notFound, anything else a
// persistence failure whose cause is hidden from the caller.
func storeError(err error, notFound error, op string) error {
	if errors.Is(err, repositories.ErrNotFound) && notFound != nil {
		return notFound
	}
	return apperror.Persistence(fmt.Errorf("%s: %w", op, err))
}
