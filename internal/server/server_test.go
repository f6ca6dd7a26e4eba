package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"wayfarer/internal/config"
	"wayfarer/internal/database"
	"wayfarer/internal/featureflags"
	"wayfarer/internal/models"
	"wayfarer/internal/testutil"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const testPassword = "Sunrise-Hiker-2024"

var serverDBSeq atomic.Int64

// testHarness is a full API surface backed by an in-memory database and a
// miniredis instance, with routes wired exactly as in production.
type testHarness struct {
	app *fiber.App
	srv *Server
	db  *gorm.DB
}

func newTestHarness(t *testing.T) *testHarness {
	t.Helper()

	dsn := fmt.Sprintf("file:server_test_%d?mode=memory&cache=shared", serverDBSeq.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// A single connection keeps the shared-cache memory DB alive.
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.Migrate(db))

	mr := miniredis.RunT(t)
	redisClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = redisClient.Close() })

	cfg := &config.Config{
		Env:                  "test",
		JWTSecret:            "server-test-secret-0123456789abcdef",
		FeatureFlags:         "downvotes=on",
		ImageUploadDir:       t.TempDir(),
		ImageMaxUploadSizeMB: 5,
	}

	srv, err := NewServerWithDeps(cfg, db, redisClient)
	require.NoError(t, err)

	app := fiber.New(fiber.Config{BodyLimit: 10 * 1024 * 1024})
	srv.SetupRoutes(app)

	return &testHarness{app: app, srv: srv, db: db}
}

func (h *testHarness) createUser(t *testing.T, username, role string) *models.User {
	t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.MinCost)
	require.NoError(t, err)
	user := &models.User{
		Username: username,
		Email:    username + "@example.com",
		Password: string(hashed),
		Role:     role,
	}
	require.NoError(t, h.db.Create(user).Error)
	return user
}

func (h *testHarness) tokenFor(t *testing.T, user *models.User) string {
	t.Helper()
	token, err := h.srv.generateToken(user)
	require.NoError(t, err)
	return token
}

func (h *testHarness) request(t *testing.T, method, path string, body any, token string) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(encoded)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := h.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()
	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestHealthEndpoints(t *testing.T) {
	t.Parallel()
	h := newTestHarness(t)

	resp := h.request(t, fiber.MethodGet, "/health/live", nil, "")
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, "up", body["status"])

	resp = h.request(t, fiber.MethodGet, "/health/ready", nil, "")
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	body = decodeBody(t, resp)
	assert.Equal(t, "healthy", body["status"])
}

func TestRegisterAndLogin(t *testing.T) {
	t.Parallel()
	h := newTestHarness(t)

	resp := h.request(t, fiber.MethodPost, "/api/auth/register", fiber.Map{
		"username": "ana_m",
		"email":    "ana@example.com",
		"password": testPassword,
	}, "")
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.NotEmpty(t, body["token"])
	user := body["user"].(map[string]any)
	assert.Equal(t, "ana_m", user["username"])
	assert.Equal(t, models.RoleUser, user["role"])

	// Same email again is a validation error.
	resp = h.request(t, fiber.MethodPost, "/api/auth/register", fiber.Map{
		"username": "ana_other",
		"email":    "ana@example.com",
		"password": testPassword,
	}, "")
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	body = decodeBody(t, resp)
	assert.Equal(t, "VALIDATION_ERROR", body["code"])

	resp = h.request(t, fiber.MethodPost, "/api/auth/login", fiber.Map{
		"email":    "ana@example.com",
		"password": testPassword,
	}, "")
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	body = decodeBody(t, resp)
	assert.NotEmpty(t, body["token"])

	resp = h.request(t, fiber.MethodPost, "/api/auth/login", fiber.Map{
		"email":    "ana@example.com",
		"password": "wrong-password-Aa1!",
	}, "")
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	body = decodeBody(t, resp)
	assert.Equal(t, "UNAUTHORIZED", body["code"])
}

func TestRegisterRejectsWeakPassword(t *testing.T) {
	t.Parallel()
	h := newTestHarness(t)

	resp := h.request(t, fiber.MethodPost, "/api/auth/register", fiber.Map{
		"username": "radu_i",
		"email":    "radu@example.com",
		"password": "short",
	}, "")
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, "VALIDATION_ERROR", body["code"])
}

func TestForumPostLifecycle(t *testing.T) {
	t.Parallel()
	h := newTestHarness(t)
	author := h.createUser(t, "elena_p", models.RoleUser)
	token := h.tokenFor(t, author)

	// Unauthenticated writes are rejected before reaching the handler.
	resp := h.request(t, fiber.MethodPost, "/api/forum/posts", fiber.Map{
		"title": "x", "category": "hiking", "content": "y",
	}, "")
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	resp = h.request(t, fiber.MethodPost, "/api/forum/posts", fiber.Map{
		"title":    "Omu Peak in early June",
		"category": "hiking",
		"content":  "Snowfields still cover the upper ridge, bring crampons.",
	}, token)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	post := decodeBody(t, resp)
	postID := int(post["id"].(float64))
	assert.Equal(t, "omu-peak-in-early-june", post["slug"])

	// Anonymous browse sees the active post.
	resp = h.request(t, fiber.MethodGet, "/api/forum/posts/", nil, "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	listing := decodeBody(t, resp)
	assert.EqualValues(t, 1, listing["count"])

	resp = h.request(t, fiber.MethodGet, fmt.Sprintf("/api/forum/posts/%d", postID), nil, "")
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp = h.request(t, fiber.MethodPost, fmt.Sprintf("/api/forum/posts/%d/replies", postID), fiber.Map{
		"content": "Crampons confirmed, the north slope was pure ice last week.",
	}, token)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	reply := decodeBody(t, resp)
	assert.EqualValues(t, 0, reply["depth"])

	resp = h.request(t, fiber.MethodGet, fmt.Sprintf("/api/forum/posts/%d/thread", postID), nil, "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	thread := decodeBody(t, resp)
	assert.Len(t, thread["replies"], 1)

	resp = h.request(t, fiber.MethodGet, "/api/forum/posts/9999", nil, "")
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	resp = h.request(t, fiber.MethodGet, "/api/forum/posts/not-a-number", nil, "")
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestReplyVoteToggle(t *testing.T) {
	t.Parallel()
	h := newTestHarness(t)
	author := h.createUser(t, "mihai_s", models.RoleUser)
	voter := h.createUser(t, "ioana_d", models.RoleUser)
	authorToken := h.tokenFor(t, author)
	voterToken := h.tokenFor(t, voter)

	resp := h.request(t, fiber.MethodPost, "/api/forum/posts", fiber.Map{
		"title":    "Transfagarasan opening dates",
		"category": "transport",
		"content":  "Road opens late June depending on snow clearing.",
	}, authorToken)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	postID := int(decodeBody(t, resp)["id"].(float64))

	resp = h.request(t, fiber.MethodPost, fmt.Sprintf("/api/forum/posts/%d/replies", postID), fiber.Map{
		"content": "The DRDP posts the exact date a week ahead.",
	}, authorToken)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	replyID := int(decodeBody(t, resp)["id"].(float64))

	votePath := fmt.Sprintf("/api/forum/replies/%d/vote", replyID)

	resp = h.request(t, fiber.MethodPost, votePath, fiber.Map{"vote_type": "upvote"}, voterToken)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, "cast", body["result"])
	assert.EqualValues(t, 1, body["reply"].(map[string]any)["upvotes"])

	resp = h.request(t, fiber.MethodGet, votePath, nil, voterToken)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "upvote", decodeBody(t, resp)["vote"])

	// Same vote again toggles it off.
	resp = h.request(t, fiber.MethodPost, votePath, fiber.Map{"vote_type": "upvote"}, voterToken)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	body = decodeBody(t, resp)
	assert.Equal(t, "retracted", body["result"])
	assert.EqualValues(t, 0, body["reply"].(map[string]any)["upvotes"])

	resp = h.request(t, fiber.MethodPost, votePath, fiber.Map{"vote_type": "downvote"}, voterToken)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	body = decodeBody(t, resp)
	assert.Equal(t, "cast", body["result"])
	assert.EqualValues(t, 1, body["reply"].(map[string]any)["downvotes"])

	resp = h.request(t, fiber.MethodPost, votePath, fiber.Map{"vote_type": "sideways"}, voterToken)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestDownvotesBehindFeatureFlag(t *testing.T) {
	t.Parallel()
	h := newTestHarness(t)
	h.srv.config.FeatureFlags = "downvotes=off"
	h.srv.flags = featureflags.NewManager(h.srv.config.FeatureFlags)

	user := h.createUser(t, "vlad_t", models.RoleUser)
	token := h.tokenFor(t, user)

	resp := h.request(t, fiber.MethodPost, "/api/forum/posts", fiber.Map{
		"title": "Gear check", "category": "gear", "content": "What stove fuel is sold in Brasov?",
	}, token)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	postID := int(decodeBody(t, resp)["id"].(float64))

	resp = h.request(t, fiber.MethodPost, fmt.Sprintf("/api/forum/posts/%d/replies", postID), fiber.Map{
		"content": "Any outdoor shop in the old town carries butane canisters.",
	}, token)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	replyID := int(decodeBody(t, resp)["id"].(float64))

	resp = h.request(t, fiber.MethodPost, fmt.Sprintf("/api/forum/replies/%d/vote", replyID),
		fiber.Map{"vote_type": "downvote"}, token)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION_ERROR", decodeBody(t, resp)["code"])

	// Upvotes are unaffected by the flag.
	resp = h.request(t, fiber.MethodPost, fmt.Sprintf("/api/forum/replies/%d/vote", replyID),
		fiber.Map{"vote_type": "upvote"}, token)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp = h.request(t, fiber.MethodGet, "/api/me/flags", nil, token)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	flags := decodeBody(t, resp)["flags"].(map[string]any)
	assert.Equal(t, false, flags["downvotes"])
}

func TestModerationSurfaceRequiresRole(t *testing.T) {
	t.Parallel()
	h := newTestHarness(t)
	user := h.createUser(t, "plain_user", models.RoleUser)
	editor := h.createUser(t, "the_editor", models.RoleEditor)

	resp := h.request(t, fiber.MethodGet, "/api/moderation/reports", nil, h.tokenFor(t, user))
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	resp = h.request(t, fiber.MethodGet, "/api/moderation/reports", nil, h.tokenFor(t, editor))
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	// Admin-only surface stays closed to editors.
	resp = h.request(t, fiber.MethodGet, "/api/admin/users", nil, h.tokenFor(t, editor))
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestReportAndResolveFlow(t *testing.T) {
	t.Parallel()
	h := newTestHarness(t)
	author := h.createUser(t, "poster_x", models.RoleUser)
	reporter := h.createUser(t, "reporter_y", models.RoleUser)
	editor := h.createUser(t, "mod_z", models.RoleEditor)

	resp := h.request(t, fiber.MethodPost, "/api/forum/posts", fiber.Map{
		"title": "Cheap tours!!!", "category": "general", "content": "Visit my site for deals.",
	}, h.tokenFor(t, author))
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	postID := int(decodeBody(t, resp)["id"].(float64))

	resp = h.request(t, fiber.MethodPost, "/api/reports", fiber.Map{
		"target_type": "post",
		"target_id":   postID,
		"reason":      "Looks like spam advertising",
	}, h.tokenFor(t, reporter))
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	reportID := int(decodeBody(t, resp)["id"].(float64))

	editorToken := h.tokenFor(t, editor)
	resp = h.request(t, fiber.MethodGet, "/api/moderation/reports?status=pending", nil, editorToken)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 1, decodeBody(t, resp)["count"])

	resp = h.request(t, fiber.MethodPost,
		fmt.Sprintf("/api/moderation/posts/%d/mark_spam", postID), nil, editorToken)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, models.PostStatusSpam, decodeBody(t, resp)["status"])

	resp = h.request(t, fiber.MethodPost,
		fmt.Sprintf("/api/moderation/reports/%d/resolve", reportID), nil, editorToken)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, models.ReportStatusResolved, decodeBody(t, resp)["status"])

	// Resolving a closed report is an invalid transition.
	resp = h.request(t, fiber.MethodPost,
		fmt.Sprintf("/api/moderation/reports/%d/resolve", reportID), nil, editorToken)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
	assert.Equal(t, "INVALID_TRANSITION", decodeBody(t, resp)["code"])

	// Spam posts vanish from public browse.
	resp = h.request(t, fiber.MethodGet, fmt.Sprintf("/api/forum/posts/%d", postID), nil, "")
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestContactInboxFlow(t *testing.T) {
	t.Parallel()
	h := newTestHarness(t)
	admin := h.createUser(t, "inbox_admin", models.RoleAdmin)
	adminToken := h.tokenFor(t, admin)

	resp := h.request(t, fiber.MethodPost, "/api/contact/messages", fiber.Map{
		"name":    "Maria",
		"email":   "maria@example.com",
		"subject": "Group visit",
		"message": "Do you arrange visits for school groups of 30?",
	}, "")
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	msgID := int(decodeBody(t, resp)["id"].(float64))

	resp = h.request(t, fiber.MethodPost, "/api/contact/messages", fiber.Map{
		"name": "Maria", "email": "not-an-email", "message": "hello there buddy",
	}, "")
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION_ERROR", decodeBody(t, resp)["code"])

	resp = h.request(t, fiber.MethodGet, "/api/admin/inbox/messages", nil, adminToken)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 1, decodeBody(t, resp)["count"])

	resp = h.request(t, fiber.MethodPost,
		fmt.Sprintf("/api/admin/inbox/messages/%d/mark_read", msgID), nil, adminToken)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, models.InboxStatusRead, decodeBody(t, resp)["status"])

	resp = h.request(t, fiber.MethodPost,
		fmt.Sprintf("/api/admin/inbox/messages/%d/mark_replied", msgID),
		fiber.Map{"notes": "Sent the group rates PDF"}, adminToken)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, models.InboxStatusReplied, body["status"])
	assert.Equal(t, "Sent the group rates PDF", body["admin_notes"])

	resp = h.request(t, fiber.MethodPost,
		fmt.Sprintf("/api/admin/inbox/messages/%d/mark_read", msgID), nil, adminToken)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
}

func TestContestEntryPipeline(t *testing.T) {
	t.Parallel()
	h := newTestHarness(t)
	entrant := h.createUser(t, "photo_fan", models.RoleUser)
	voter := h.createUser(t, "photo_voter", models.RoleUser)
	admin := h.createUser(t, "photo_admin", models.RoleAdmin)

	now := time.Now()
	contest := &models.Contest{
		Title:    "Autumn in the Apuseni",
		Slug:     "autumn-apuseni",
		StartsAt: now.Add(-24 * time.Hour),
		EndsAt:   now.Add(24 * time.Hour),
	}
	require.NoError(t, h.db.Create(contest).Error)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("title", "Fog over Padis"))
	part, err := mw.CreateFormFile("image", "padis.png")
	require.NoError(t, err)
	_, err = part.Write(testutil.TinyPNG(t, 480, 480))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(fiber.MethodPost,
		fmt.Sprintf("/api/contests/%d/entries", contest.ID), &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+h.tokenFor(t, entrant))
	resp, err := h.app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	entry := decodeBody(t, resp)
	entryID := int(entry["id"].(float64))
	assert.Equal(t, models.SubmissionStatusPending, entry["status"])
	imageKey := entry["image_key"].(string)

	// Pending entries are invisible to the public and cannot be voted on.
	resp = h.request(t, fiber.MethodGet,
		fmt.Sprintf("/api/contests/%d/entries", contest.ID), nil, "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 0, decodeBody(t, resp)["count"])

	voterToken := h.tokenFor(t, voter)
	resp = h.request(t, fiber.MethodPost,
		fmt.Sprintf("/api/contests/entries/%d/vote", entryID), nil, voterToken)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	resp = h.request(t, fiber.MethodPost,
		fmt.Sprintf("/api/moderation/contests/entries/%d/approve", entryID), nil,
		h.tokenFor(t, admin))
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, models.SubmissionStatusApproved, decodeBody(t, resp)["status"])

	resp = h.request(t, fiber.MethodPost,
		fmt.Sprintf("/api/contests/entries/%d/vote", entryID), nil, voterToken)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, "cast", body["result"])
	assert.EqualValues(t, 1, body["entry"].(map[string]any)["votes_count"])

	resp = h.request(t, fiber.MethodGet,
		fmt.Sprintf("/api/contests/%d/tally", contest.ID), nil, "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 1, decodeBody(t, resp)["total_votes"])

	// The normalized image is served back as webp.
	resp = h.request(t, fiber.MethodGet, "/media/contest/"+imageKey, nil, "")
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/webp", resp.Header.Get(fiber.HeaderContentType))
	resp.Body.Close()

	resp = h.request(t, fiber.MethodGet, "/media/contest/../../etc/passwd", nil, "")
	assert.NotEqual(t, fiber.StatusOK, resp.StatusCode)
}

func TestBanGuardBlocksWrites(t *testing.T) {
	t.Parallel()
	h := newTestHarness(t)
	admin := h.createUser(t, "ban_admin", models.RoleAdmin)
	target := h.createUser(t, "ban_target", models.RoleUser)
	targetToken := h.tokenFor(t, target)

	resp := h.request(t, fiber.MethodPost, "/api/admin/bans", fiber.Map{
		"user_id":  target.ID,
		"ban_type": models.BanTypePermanent,
		"reason":   "Repeated spam after warnings",
	}, h.tokenFor(t, admin))
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	banID := int(decodeBody(t, resp)["id"].(float64))

	resp = h.request(t, fiber.MethodPost, "/api/forum/posts", fiber.Map{
		"title": "Hello again", "category": "general", "content": "I am back.",
	}, targetToken)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	// Public browse is unaffected.
	resp = h.request(t, fiber.MethodGet, "/api/forum/posts/", nil, "")
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp = h.request(t, fiber.MethodDelete, fmt.Sprintf("/api/admin/bans/%d", banID),
		nil, h.tokenFor(t, admin))
	require.Equal(t, fiber.StatusNoContent, resp.StatusCode)

	resp = h.request(t, fiber.MethodPost, "/api/forum/posts", fiber.Map{
		"title": "Hello again", "category": "general", "content": "I am back.",
	}, targetToken)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)
}

func TestReviewsFlow(t *testing.T) {
	t.Parallel()
	h := newTestHarness(t)
	reviewer := h.createUser(t, "reviewer_a", models.RoleUser)
	reader := h.createUser(t, "reader_b", models.RoleUser)
	editor := h.createUser(t, "review_mod", models.RoleEditor)

	objective := &models.Objective{Name: "Bran Castle", Slug: "bran-castle", Region: "Brasov"}
	require.NoError(t, h.db.Create(objective).Error)

	resp := h.request(t, fiber.MethodPost, "/api/reviews", fiber.Map{
		"subject_type": models.ReviewSubjectObjective,
		"subject_id":   objective.ID,
		"rating":       5,
		"title":        "Go early",
		"comment":      "Arrive before 9am to beat the tour buses.",
	}, h.tokenFor(t, reviewer))
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	reviewID := int(decodeBody(t, resp)["id"].(float64))

	// Unapproved reviews are hidden from public listings.
	listPath := fmt.Sprintf("/api/reviews?subject_type=%s&subject_id=%d",
		models.ReviewSubjectObjective, objective.ID)
	resp = h.request(t, fiber.MethodGet, listPath, nil, "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 0, decodeBody(t, resp)["count"])

	resp = h.request(t, fiber.MethodPost,
		fmt.Sprintf("/api/moderation/reviews/%d/approve", reviewID), nil,
		h.tokenFor(t, editor))
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp = h.request(t, fiber.MethodGet, listPath, nil, "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 1, decodeBody(t, resp)["count"])

	resp = h.request(t, fiber.MethodPost,
		fmt.Sprintf("/api/reviews/%d/helpful", reviewID), nil, h.tokenFor(t, reader))
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
}

func TestDirectoryLookup(t *testing.T) {
	t.Parallel()
	h := newTestHarness(t)

	require.NoError(t, h.db.Create(&models.Objective{
		Name: "Turda Salt Mine", Slug: "turda-salt-mine", Region: "Cluj",
	}).Error)

	resp := h.request(t, fiber.MethodGet, "/api/objectives/turda-salt-mine", nil, "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "Turda Salt Mine", decodeBody(t, resp)["name"])

	resp = h.request(t, fiber.MethodGet, "/api/objectives/no-such-place", nil, "")
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "NOT_FOUND", decodeBody(t, resp)["code"])
}
