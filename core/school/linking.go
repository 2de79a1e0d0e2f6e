package school

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/cpel/core"
)

// Linking looks the child up, then pushes a copy of it into the parent's array field.
// The two steps are not transactional and attaching the same child twice embeds two copies.

func (svc *Service) AttachGroupToModule(ctx context.Context, moduleID, groupID string) (Module, error) {
	grp, err := svc.Groups.GetByID(ctx, groupID)
	if err != nil {
		return Module{}, err
	}
	return svc.Modules.push(ctx, moduleID, "groups", grp)
}

func (svc *Service) AttachTDToModule(ctx context.Context, moduleID, tdID string) (Module, error) {
	td, err := svc.TDs.GetByID(ctx, tdID)
	if err != nil {
		return Module{}, err
	}
	return svc.Modules.push(ctx, moduleID, "tds", td)
}

func (svc *Service) AttachModuleToGroup(ctx context.Context, groupID, moduleID string) (Group, error) {
	mod, err := svc.Modules.GetByID(ctx, moduleID)
	if err != nil {
		return Group{}, err
	}
	return svc.Groups.push(ctx, groupID, "modules", mod)
}

func (svc *Service) AttachStudentToGroup(ctx context.Context, groupID, studentID string) (Group, error) {
	stud, err := svc.Students.GetByID(ctx, studentID)
	if err != nil {
		return Group{}, err
	}
	return svc.Groups.push(ctx, groupID, "students", stud)
}

func (svc *Service) AttachExerciseToTD(ctx context.Context, tdID, exerciseID string) (TD, error) {
	ex, err := svc.Exercises.GetByID(ctx, exerciseID)
	if err != nil {
		return TD{}, err
	}
	return svc.TDs.push(ctx, tdID, "exercises", ex)
}

// AttachToModule attaches the group or, failing that, the TD identified by childID.
func (svc *Service) AttachToModule(ctx context.Context, moduleID, childID string) (Module, error) {
	mod, err := svc.AttachGroupToModule(ctx, moduleID, childID)
	if !isChildNotFound(err, ResourceGroup) {
		return mod, err
	}
	mod, err = svc.AttachTDToModule(ctx, moduleID, childID)
	if isChildNotFound(err, ResourceTD) {
		return Module{}, core.NewNotFoundError(ResourceGroup+" or "+ResourceTD, childID)
	}
	return mod, err
}

// AttachToGroup attaches the module or, failing that, the student identified by childID.
func (svc *Service) AttachToGroup(ctx context.Context, groupID, childID string) (Group, error) {
	grp, err := svc.AttachModuleToGroup(ctx, groupID, childID)
	if !isChildNotFound(err, ResourceModule) {
		return grp, err
	}
	grp, err = svc.AttachStudentToGroup(ctx, groupID, childID)
	if isChildNotFound(err, ResourceStudent) {
		return Group{}, core.NewNotFoundError(ResourceModule+" or "+ResourceStudent, childID)
	}
	return grp, err
}

func isChildNotFound(err error, resource string) bool {
	nfErr, ok := errors.Cause(err).(*core.NotFoundError)
	return ok && nfErr.Resource == resource
}
