package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/iac-studio/dashboard/internal/models"
	"github.com/iac-studio/dashboard/internal/remote/remotetest"
	appErr "github.com/iac-studio/dashboard/pkg/errors"
)

var impactPreview = &models.DeletionPreview{ResourceCount: 3, EstimatedMonthlyCost: 215, Message: "3 resources will be deleted"}

func TestDeletionPreviewDoesNotDelete(t *testing.T) {
	api := &remotetest.MockAPI{}
	api.On("DeleteProject", mock.Anything, "p-1", false).Return(impactPreview, nil)
	f := NewDeletionFlow(api)

	got, err := f.Request(context.Background(), "p-1")
	require.NoError(t, err)
	require.Equal(t, 3, got.ResourceCount)
	require.Equal(t, DeletionConfirming, f.State().Phase)
	require.Equal(t, "p-1", f.State().ProjectID)
	api.AssertNotCalled(t, "DeleteProject", mock.Anything, "p-1", true)
}

func TestDeletionConfirmRequiresPreview(t *testing.T) {
	api := &remotetest.MockAPI{}
	f := NewDeletionFlow(api)

	err := f.Confirm(context.Background())
	require.True(t, appErr.IsCode(err, appErr.CodeInvalid))
	require.Equal(t, DeletionIdle, f.State().Phase)
	api.AssertNotCalled(t, "DeleteProject", mock.Anything, mock.Anything, mock.Anything)
}

func TestDeletionConfirm(t *testing.T) {
	api := &remotetest.MockAPI{}
	api.On("DeleteProject", mock.Anything, "p-1", false).Return(impactPreview, nil).Once()
	api.On("DeleteProject", mock.Anything, "p-1", true).Return(nil, nil).Once()
	f := NewDeletionFlow(api)

	_, err := f.Request(context.Background(), "p-1")
	require.NoError(t, err)
	require.NoError(t, f.Confirm(context.Background()))
	st := f.State()
	require.Equal(t, DeletionDone, st.Phase)
	require.Nil(t, st.Preview)

	_, err = f.Request(context.Background(), "p-1")
	require.True(t, appErr.IsCode(err, appErr.CodeConflict))
	api.AssertExpectations(t)
}

func TestDeletionConfirmFailureReturnsToIdle(t *testing.T) {
	api := &remotetest.MockAPI{}
	api.On("DeleteProject", mock.Anything, "p-1", false).Return(impactPreview, nil)
	api.On("DeleteProject", mock.Anything, "p-1", true).Return(nil, appErr.Remote(errors.New("locked"), "delete failed"))
	f := NewDeletionFlow(api)

	_, err := f.Request(context.Background(), "p-1")
	require.NoError(t, err)
	err = f.Confirm(context.Background())
	require.True(t, appErr.IsCode(err, appErr.CodeUnavailable))
	require.Equal(t, DeletionIdle, f.State().Phase)

	// a second confirm needs a fresh impactPreview
	require.True(t, appErr.IsCode(f.Confirm(context.Background()), appErr.CodeInvalid))
}

func TestDeletionCancel(t *testing.T) {
	api := &remotetest.MockAPI{}
	api.On("DeleteProject", mock.Anything, "p-1", false).Return(impactPreview, nil).Once()
	f := NewDeletionFlow(api)

	_, err := f.Request(context.Background(), "p-1")
	require.NoError(t, err)
	f.Cancel()
	st := f.State()
	require.Equal(t, DeletionIdle, st.Phase)
	require.Nil(t, st.Preview)
	api.AssertNumberOfCalls(t, "DeleteProject", 1)
}

func TestDeletionPreviewFailureStaysIdle(t *testing.T) {
	api := &remotetest.MockAPI{}
	api.On("DeleteProject", mock.Anything, "p-1", false).Return(nil, appErr.NotFound("project not found"))
	f := NewDeletionFlow(api)

	_, err := f.Request(context.Background(), "p-1")
	require.True(t, appErr.IsCode(err, appErr.CodeNotFound))
	require.Equal(t, DeletionIdle, f.State().Phase)
}
