package contact

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vedzeb_server/internal/dao/mysql/repository"
	"vedzeb_server/internal/dao/mysql/repository/memrepo"
	"vedzeb_server/internal/dto/request"
	"vedzeb_server/internal/infrastructure/mq"
	"vedzeb_server/internal/model"
	"vedzeb_server/pkg/errorx"
)

type recorder struct {
	mu     sync.Mutex
	events []mq.Event
}

func (r *recorder) Publish(_ context.Context, ev mq.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return nil
}

func (r *recorder) Close() error { return nil }

func (r *recorder) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, ev := range r.events {
		out = append(out, ev.Type)
	}
	return out
}

type fixture struct {
	svc     *Service
	repos   *repository.Repositories
	store   *memrepo.Store
	events  *recorder
	owner   *model.User
	seeker  *model.User
	profile *model.Profile
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	repos, store := memrepo.New()
	f := &fixture{repos: repos, store: store, events: &recorder{}}
	f.svc = NewContactService(repos, f.events)

	f.owner = &model.User{Phone: "+995555000001", PhoneVerified: true}
	require.NoError(t, repos.User.Create(f.owner))
	f.seeker = &model.User{Phone: "+995555000002", PhoneVerified: true}
	require.NoError(t, repos.User.Create(f.seeker))

	f.profile = &model.Profile{
		UserID:    f.owner.ID,
		Type:      model.ProfileSearchingSibling,
		FirstName: "Nino",
		Gender:    model.GenderFemale,
		IsActive:  true,
	}
	require.NoError(t, repos.Profile.Create(f.profile))
	return f
}

func (f *fixture) send(t *testing.T, note string) string {
	t.Helper()
	view, err := f.svc.Create(context.Background(), f.seeker.ID, request.CreateContactRequest{
		ProfileID: f.profile.ID,
		Message:   note,
	})
	require.NoError(t, err)
	return view.ID
}

func TestCreateShowsUpInOwnerInbox(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	view, err := f.svc.Create(ctx, f.seeker.ID, request.CreateContactRequest{
		ProfileID: f.profile.ID,
		Message:   "  Hello  ",
	})
	require.NoError(t, err)
	assert.Equal(t, model.ContactPending, view.Status)
	assert.Equal(t, "Hello", view.Message)
	require.Len(t, view.Messages, 1)

	list, err := f.svc.ListMine(ctx, f.owner.ID, ListReceived)
	require.NoError(t, err)
	assert.Nil(t, list.Sent)
	require.Len(t, list.Received, 1)
	got := list.Received[0]
	assert.Equal(t, model.ContactPending, got.Status)
	require.Len(t, got.Messages, 1)
	assert.Equal(t, "Hello", got.Messages[0].Content)
	require.NotNil(t, got.FromUser)
	assert.Equal(t, f.seeker.Phone, got.FromUser.Phone)

	assert.Equal(t, []string{mq.EventContactRequestCreated}, f.events.types())
	assert.Equal(t, f.owner.ID, f.events.events[0].RecipientID)
}

func TestCreateWithoutNoteHasNoMessages(t *testing.T) {
	f := newFixture(t)
	f.send(t, "   ")
	assert.Equal(t, 1, f.store.ContactRequestCount())
	assert.Equal(t, 0, f.store.MessageCount())
}

func TestCreateRejections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, f.owner.ID, request.CreateContactRequest{ProfileID: f.profile.ID})
	assert.ErrorIs(t, err, ErrSelfContact)
	assert.Equal(t, errorx.CodeForbidden, errorx.GetCode(err))

	f.send(t, "first")
	_, err = f.svc.Create(ctx, f.seeker.ID, request.CreateContactRequest{ProfileID: f.profile.ID, Message: "again"})
	assert.ErrorIs(t, err, ErrDuplicateRequest)
	assert.Equal(t, errorx.CodeConflict, errorx.GetCode(err))
	assert.Equal(t, 1, f.store.ContactRequestCount())

	_, err = f.svc.Create(ctx, f.seeker.ID, request.CreateContactRequest{ProfileID: "00000000-0000-0000-0000-000000000000"})
	assert.True(t, errorx.IsNotFound(err))
}

func TestUpdateStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.send(t, "hi")

	_, err := f.svc.UpdateStatus(ctx, f.owner.ID, id, "pending")
	assert.ErrorIs(t, err, ErrInvalidStatus)

	_, err = f.svc.UpdateStatus(ctx, f.seeker.ID, id, string(model.ContactAccepted))
	assert.ErrorIs(t, err, ErrNotProfileOwner)

	view, err := f.svc.UpdateStatus(ctx, f.owner.ID, id, string(model.ContactAccepted))
	require.NoError(t, err)
	assert.Equal(t, model.ContactAccepted, view.Status)
	require.NotNil(t, view.FromUser)
	assert.Equal(t, f.seeker.ID, view.FromUser.ID)

	_, err = f.svc.UpdateStatus(ctx, f.owner.ID, id, string(model.ContactRejected))
	assert.ErrorIs(t, err, ErrAlreadyResolved)

	cr, err := f.repos.ContactRequest.FindByID(id)
	require.NoError(t, err)
	assert.Equal(t, model.ContactAccepted, cr.Status)

	types := f.events.types()
	require.Len(t, types, 2)
	assert.Equal(t, mq.EventContactRequestStatus, types[1])
	assert.Equal(t, f.seeker.ID, f.events.events[1].RecipientID)
}

func TestConversation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.send(t, "Hello")

	_, err := f.svc.SendMessage(ctx, f.seeker.ID, id, "   ")
	assert.ErrorIs(t, err, ErrEmptyMessage)
	_, err = f.svc.SendMessage(ctx, f.seeker.ID, id, strings.Repeat("ა", model.MaxMessageLength+1))
	assert.ErrorIs(t, err, ErrMessageTooLong)

	// 按字符计，多字节字符正好卡在上限也能发送
	_, err = f.svc.SendMessage(ctx, f.seeker.ID, id, strings.Repeat("ა", model.MaxMessageLength))
	require.NoError(t, err)

	reply, err := f.svc.SendMessage(ctx, f.owner.ID, id, " thanks ")
	require.NoError(t, err)
	assert.Equal(t, "thanks", reply.Content)

	stranger := &model.User{Phone: "+995555000003"}
	require.NoError(t, f.repos.User.Create(stranger))
	_, err = f.svc.SendMessage(ctx, stranger.ID, id, "hey")
	assert.ErrorIs(t, err, ErrNotParticipant)
	_, err = f.svc.GetConversation(ctx, stranger.ID, id)
	assert.ErrorIs(t, err, ErrNotParticipant)

	conv, err := f.svc.GetConversation(ctx, f.owner.ID, id)
	require.NoError(t, err)
	require.Len(t, conv.Messages, 3)
	assert.Equal(t, "Hello", conv.Messages[0].Content)
	assert.Equal(t, "thanks", conv.Messages[2].Content)

	// 对方的消息已读，自己的不变
	msgs, err := f.repos.Message.ListByRequest(id)
	require.NoError(t, err)
	for _, m := range msgs {
		assert.Equal(t, m.SenderID == f.seeker.ID, m.IsRead, m.Content)
	}
}

func TestListMineDirections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.send(t, "Hello")

	all, err := f.svc.ListMine(ctx, f.seeker.ID, "")
	require.NoError(t, err)
	require.Len(t, all.Sent, 1)
	assert.Empty(t, all.Received)
	require.NotNil(t, all.Sent[0].ToProfile)
	assert.Equal(t, f.profile.ID, all.Sent[0].ToProfile.ID)

	sent, err := f.svc.ListMine(ctx, f.seeker.ID, ListSent)
	require.NoError(t, err)
	assert.Len(t, sent.Sent, 1)
	assert.Nil(t, sent.Received)
}

func TestDeleteRemovesMessages(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.send(t, "Hello")
	_, err := f.svc.SendMessage(ctx, f.owner.ID, id, "reply")
	require.NoError(t, err)

	stranger := &model.User{Phone: "+995555000004"}
	require.NoError(t, f.repos.User.Create(stranger))
	assert.ErrorIs(t, f.svc.Delete(ctx, stranger.ID, id), ErrNotParticipant)

	require.NoError(t, f.svc.Delete(ctx, f.owner.ID, id))
	assert.Equal(t, 0, f.store.ContactRequestCount())
	assert.Equal(t, 0, f.store.MessageCount())

	// 删除后可以重新发起
	f.send(t, "again")
}
