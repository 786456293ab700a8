package handlers

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"stichting-asha/internal/middleware"
	"stichting-asha/internal/models"
	"stichting-asha/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const fakePDF = "%PDF-1.4\n1 0 obj\n<<>>\nendobj\n"

type volunteerFixture struct {
	srv        *testServer
	volunteers fakeVolunteers
	mailer     *fakeMailer
	activity   *fakeActivity
}

func newVolunteerFixture(t *testing.T) *volunteerFixture {
	t.Helper()
	f := &volunteerFixture{
		volunteers: fakeVolunteers{newDocs[models.Volunteer]()},
		mailer:     &fakeMailer{},
		activity:   &fakeActivity{},
	}
	h := NewVolunteerHandler(f.volunteers, services.NewInlineStore(), f.mailer, f.activity, nullLogger())
	h.now = func() time.Time { return testNow }
	f.srv = newTestServer(t, &API{Volunteers: h})
	return f
}

func applicationRequest(t *testing.T, fields map[string]string, files map[string]string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	for field, name := range files {
		fw, err := mw.CreateFormFile(field, name)
		require.NoError(t, err)
		_, err = fw.Write([]byte(fakePDF))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/volunteers/apply", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func applicationFields() map[string]string {
	return map[string]string{
		"firstName":   "Anita",
		"lastName":    "Ramdin",
		"email":       "Anita@Example.org",
		"phoneNumber": "0612345678",
		"message":     "Ik wil graag helpen",
	}
}

func applicationFiles() map[string]string {
	return map[string]string{"cv": "cv.pdf", "motivationLetter": "brief.pdf"}
}

func (f *volunteerFixture) add(status models.VolunteerStatus) primitive.ObjectID {
	id := primitive.NewObjectID()
	f.volunteers.put(id, models.Volunteer{
		ID:        id,
		FirstName: "Anita",
		LastName:  "Ramdin",
		Email:     id.Hex() + "@example.org",
		Status:    status,
		CV:        &models.Attachment{Filename: "cv.pdf", ContentType: "application/pdf", Data: "JVBERi0=", Key: "k1"},
	})
	return id
}

func TestApply(t *testing.T) {
	f := newVolunteerFixture(t)

	w := f.srv.send(applicationRequest(t, applicationFields(), applicationFiles()), "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	list := f.volunteers.list()
	require.Len(t, list, 1)
	v := list[0]
	assert.Equal(t, models.VolunteerPending, v.Status)
	assert.Equal(t, "anita@example.org", v.Email)
	require.NotNil(t, v.CV)
	assert.Equal(t, "cv.pdf", v.CV.Filename)
	assert.Equal(t, "application/pdf", v.CV.ContentType)
	assert.NotEmpty(t, v.CV.Data)
	require.NotNil(t, v.MotivationLetter)

	entries := f.activity.all()
	require.Len(t, entries, 1)
	assert.Equal(t, "Anoniem", entries[0].By)
}

func TestApply_DuplicateEmail(t *testing.T) {
	f := newVolunteerFixture(t)

	w := f.srv.send(applicationRequest(t, applicationFields(), applicationFiles()), "")
	require.Equal(t, http.StatusCreated, w.Code)

	fields := applicationFields()
	fields["email"] = "anita@example.org"
	w = f.srv.send(applicationRequest(t, fields, applicationFiles()), "")
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, msgVolunteerDuplicate, errorOf(t, w))
	assert.Equal(t, 1, f.volunteers.len())
}

func TestApply_Incomplete(t *testing.T) {
	f := newVolunteerFixture(t)

	fields := applicationFields()
	delete(fields, "phoneNumber")
	w := f.srv.send(applicationRequest(t, fields, applicationFiles()), "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, msgRequired, errorOf(t, w))

	w = f.srv.send(applicationRequest(t, applicationFields(), map[string]string{"cv": "cv.pdf"}), "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, msgVolunteerFiles, errorOf(t, w))

	w = f.srv.send(applicationRequest(t, applicationFields(), map[string]string{"cv": "cv.exe", "motivationLetter": "brief.pdf"}), "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	assert.Zero(t, f.volunteers.len())
}

func TestVolunteers_AdminOnly(t *testing.T) {
	f := newVolunteerFixture(t)
	id := f.add(models.VolunteerPending)

	for _, role := range []models.Role{"", models.RoleVrijwilliger, models.RoleStagiair} {
		w := f.srv.do(http.MethodGet, "/api/volunteers", role, nil)
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Equal(t, middleware.MsgVolunteersDenied, errorOf(t, w))

		w = f.srv.do(http.MethodPut, "/api/volunteers/"+id.Hex(), role, map[string]string{"action": "approve"})
		assert.Equal(t, http.StatusForbidden, w.Code)
	}

	v, err := f.volunteers.get(id.Hex())
	require.NoError(t, err)
	assert.Equal(t, models.VolunteerPending, v.Status)
}

func TestGetVolunteers_FilterAndNoPayload(t *testing.T) {
	f := newVolunteerFixture(t)
	f.add(models.VolunteerPending)
	f.add(models.VolunteerApproved)

	w := f.srv.do(http.MethodGet, "/api/volunteers?status=all", models.RoleBeheerder, nil)
	require.Equal(t, http.StatusOK, w.Code)
	all := decode[[]models.Volunteer](t, w)
	require.Len(t, all, 2)
	assert.Empty(t, all[0].CV.Data)
	assert.Equal(t, "cv.pdf", all[0].CV.Filename)

	w = f.srv.do(http.MethodGet, "/api/volunteers?status=approved", models.RoleBeheerder, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]models.Volunteer](t, w), 1)

	w = f.srv.do(http.MethodGet, "/api/volunteers?status=weird", models.RoleBeheerder, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetVolunteerFile(t *testing.T) {
	f := newVolunteerFixture(t)
	id := f.add(models.VolunteerPending)

	w := f.srv.do(http.MethodGet, "/api/volunteers/"+id.Hex()+"/file?type=cv", models.RoleDeveloper, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"filename":"cv.pdf","contentType":"application/pdf","data":"JVBERi0="}`, w.Body.String())

	w = f.srv.do(http.MethodGet, "/api/volunteers/"+id.Hex()+"/file?type=motivationLetter", models.RoleDeveloper, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = f.srv.do(http.MethodGet, "/api/volunteers/"+id.Hex()+"/file?type=paspoort", models.RoleDeveloper, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDecide(t *testing.T) {
	f := newVolunteerFixture(t)
	id := f.add(models.VolunteerPending)
	path := "/api/volunteers/" + id.Hex()

	w := f.srv.do(http.MethodPut, path, models.RoleBeheerder, map[string]string{"action": "approve"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.VolunteerApproved, decode[models.Volunteer](t, w).Status)

	// a decision can be revised
	w = f.srv.do(http.MethodPut, path, models.RoleBeheerder, map[string]string{"action": "reject"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.VolunteerDenied, decode[models.Volunteer](t, w).Status)

	assert.Equal(t, []models.VolunteerStatus{models.VolunteerApproved, models.VolunteerDenied}, f.mailer.decisions)

	w = f.srv.do(http.MethodPut, path, models.RoleBeheerder, map[string]string{"action": "archive"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, msgVolunteerAction, errorOf(t, w))

	w = f.srv.do(http.MethodPut, "/api/volunteers/"+primitive.NewObjectID().Hex(), models.RoleBeheerder, map[string]string{"action": "approve"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeleteVolunteer(t *testing.T) {
	f := newVolunteerFixture(t)
	id := f.add(models.VolunteerDenied)

	w := f.srv.do(http.MethodDelete, "/api/volunteers/"+id.Hex(), models.RoleBeheerder, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Zero(t, f.volunteers.len())

	w = f.srv.do(http.MethodDelete, "/api/volunteers/"+id.Hex(), models.RoleBeheerder, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, msgVolunteerNotFound, errorOf(t, w))
}
