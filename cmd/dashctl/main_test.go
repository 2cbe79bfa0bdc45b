package main

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/iac-studio/dashboard/internal/models"
	"github.com/iac-studio/dashboard/internal/remote/remotetest"
	appErr "github.com/iac-studio/dashboard/pkg/errors"
	"github.com/iac-studio/dashboard/pkg/logger"
)

func TestMain(m *testing.M) {
	if _, err := logger.Init("error", "json"); err != nil {
		panic("failed to init logger: " + err.Error())
	}
	os.Exit(m.Run())
}

func run(t *testing.T, api *remotetest.MockAPI, args ...string) (string, error) {
	t.Helper()
	a := &app{api: api, token: "token-a"}
	cmd := newRootCmd(a)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func cost(v float64) *float64 { return &v }

func TestProjectsTable(t *testing.T) {
	api := &remotetest.MockAPI{}
	api.On("ListProjects", mock.Anything).Return([]models.Project{
		{ID: "p-1", Name: "shop", Status: models.StatusCode(4), Resources: []models.Resource{
			{ID: "r1", Status: models.StatusName("Failed"), EstimatedMonthlyCost: cost(12.5)},
			{ID: "r2", Status: models.StatusCode(2), EstimatedMonthlyCost: cost(30)},
		}},
	}, nil)

	out, err := run(t, api, "projects")
	require.NoError(t, err)
	require.Contains(t, out, "shop")
	require.Contains(t, out, "Active")
	require.Contains(t, out, "$42.50")
	require.Contains(t, out, "1 projects, 1 active, 2 resources (1 failed)")
}

func TestStatusPrintsResources(t *testing.T) {
	api := &remotetest.MockAPI{}
	api.ExpectSnapshot("p-1", &models.Project{ID: "p-1", Name: "shop", Status: models.StatusName("provisioning")},
		[]models.Resource{
			{ID: "r1", Name: "web", ResourceType: "Microsoft.Web/sites", Status: models.StatusCode(3), ErrorMessage: "quota exceeded"},
			{ID: "r2", Name: "db", ResourceType: "Microsoft.Sql/servers", Status: models.StatusCode(9)},
		}, nil)

	out, err := run(t, api, "status", "p-1")
	require.NoError(t, err)
	require.Contains(t, out, "status: Provisioning")
	require.Contains(t, out, "quota exceeded")
	require.Contains(t, out, "Failed")
	require.Contains(t, out, "Unknown")
}

func TestStatusMissingProject(t *testing.T) {
	api := &remotetest.MockAPI{}
	api.On("GetProject", mock.Anything, "gone").Return(nil, appErr.NotFound("project not found"))

	_, err := run(t, api, "status", "gone")
	require.True(t, appErr.IsCode(err, appErr.CodeNotFound))
}

func TestRetryOneResource(t *testing.T) {
	api := &remotetest.MockAPI{}
	api.ExpectSnapshot("p-1", &models.Project{ID: "p-1", Name: "shop"},
		[]models.Resource{{ID: "r1", Status: models.StatusCode(3)}}, nil)
	api.On("RetryResource", mock.Anything, "p-1", "r1").Return(nil).Once()

	out, err := run(t, api, "retry", "p-1", "r1")
	require.NoError(t, err)
	require.Contains(t, out, "retry submitted for r1")
	api.AssertExpectations(t)
}

func TestRetryAllSkipsWhenNothingFailed(t *testing.T) {
	api := &remotetest.MockAPI{}
	api.ExpectSnapshot("p-1", &models.Project{ID: "p-1", Name: "shop"},
		[]models.Resource{{ID: "r1", Status: models.StatusCode(2)}}, nil)

	out, err := run(t, api, "retry", "p-1")
	require.NoError(t, err)
	require.Contains(t, out, "no failed resources")
	api.AssertNotCalled(t, "RetryAllFailedResources", mock.Anything, mock.Anything)
}

func TestRetryAllFailed(t *testing.T) {
	api := &remotetest.MockAPI{}
	api.ExpectSnapshot("p-1", &models.Project{ID: "p-1", Name: "shop"},
		[]models.Resource{{ID: "r1", Status: models.StatusCode(3)}, {ID: "r2", Status: models.StatusName("failed")}}, nil)
	api.On("RetryAllFailedResources", mock.Anything, "p-1").Return(nil).Once()

	out, err := run(t, api, "retry", "p-1")
	require.NoError(t, err)
	require.Contains(t, out, "retry submitted for 2 failed resources")
}

func TestDeleteWithoutYesOnlyPreviews(t *testing.T) {
	api := &remotetest.MockAPI{}
	api.ExpectSnapshot("p-1", &models.Project{ID: "p-1", Name: "shop"}, nil, nil)
	api.On("DeleteProject", mock.Anything, "p-1", false).
		Return(&models.DeletionPreview{ResourceCount: 2, EstimatedMonthlyCost: 42.5}, nil)

	out, err := run(t, api, "delete", "p-1")
	require.NoError(t, err)
	require.Contains(t, out, "2 resources, $42.50/month will be removed")
	require.Contains(t, out, "nothing deleted")
	api.AssertNotCalled(t, "DeleteProject", mock.Anything, "p-1", true)
}

func TestDeleteWithYes(t *testing.T) {
	api := &remotetest.MockAPI{}
	api.ExpectSnapshot("p-1", &models.Project{ID: "p-1", Name: "shop"}, nil, nil)
	api.On("DeleteProject", mock.Anything, "p-1", false).Return(&models.DeletionPreview{ResourceCount: 0}, nil)
	api.On("DeleteProject", mock.Anything, "p-1", true).Return(nil, nil).Once()

	out, err := run(t, api, "delete", "p-1", "--yes")
	require.NoError(t, err)
	require.Contains(t, out, "project p-1 deleted")
	api.AssertExpectations(t)
}

func TestRequiresToken(t *testing.T) {
	a := &app{api: &remotetest.MockAPI{}}
	cmd := newRootCmd(a)
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"projects"})
	require.Error(t, cmd.Execute())
}
