// Package contact 提供联系请求及其会话的业务逻辑
// 状态机：pending -> accepted | rejected，两个终态不可再迁移
package contact

import (
	"context"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"vedzeb_server/internal/dao/mysql/repository"
	"vedzeb_server/internal/dto/request"
	"vedzeb_server/internal/dto/respond"
	"vedzeb_server/internal/infrastructure/mq"
	"vedzeb_server/internal/model"
	"vedzeb_server/pkg/errorx"
)

// 列表方向
const (
	ListAll      = "all"
	ListSent     = "sent"
	ListReceived = "received"
)

var (
	ErrSelfContact      = errorx.New(errorx.CodeForbidden, "Cannot send contact request to your own profile")
	ErrDuplicateRequest = errorx.New(errorx.CodeConflict, "Contact request already sent")
	ErrInvalidStatus    = errorx.New(errorx.CodeInvalidParam, "Invalid status. Must be one of: accepted, rejected")
	ErrAlreadyResolved  = errorx.New(errorx.CodeConflict, "Contact request has already been resolved")
	ErrNotProfileOwner  = errorx.New(errorx.CodeForbidden, "Not authorized to update this request")
	ErrNotParticipant   = errorx.New(errorx.CodeForbidden, "Not authorized to access this conversation")
	ErrEmptyMessage     = errorx.New(errorx.CodeInvalidParam, "Message content is required")
	ErrMessageTooLong   = errorx.Newf(errorx.CodeInvalidParam, "Message must be at most %d characters", model.MaxMessageLength)
)

// Service 联系请求服务实现
type Service struct {
	repos     *repository.Repositories
	publisher mq.EventPublisher
}

// NewContactService publisher 为 nil 时不推送实时事件
func NewContactService(repos *repository.Repositories, publisher mq.EventPublisher) *Service {
	if publisher == nil {
		publisher = mq.NoopPublisher{}
	}
	return &Service{repos: repos, publisher: publisher}
}

// cleanContent 去掉首尾空白并检查长度（按字符计）
func cleanContent(content string, allowEmpty bool) (string, error) {
	content = strings.TrimSpace(content)
	if content == "" && !allowEmpty {
		return "", ErrEmptyMessage
	}
	if utf8.RuneCountInString(content) > model.MaxMessageLength {
		return "", ErrMessageTooLong
	}
	return content, nil
}

// Create 发起联系请求，附言不为空时同时写入第一条消息
// (from_user_id, to_profile_id) 唯一索引兜底并发重复提交
func (s *Service) Create(ctx context.Context, userID string, req request.CreateContactRequest) (*respond.ContactRequestView, error) {
	profile, err := s.repos.Profile.FindByID(req.ProfileID)
	if err != nil {
		return nil, err
	}
	if profile.UserID == userID {
		return nil, ErrSelfContact
	}
	text, err := cleanContent(req.Message, true)
	if err != nil {
		return nil, err
	}

	cr := &model.ContactRequest{
		FromUserID:  userID,
		ToProfileID: profile.ID,
		Message:     text,
		Status:      model.ContactPending,
	}
	err = s.repos.Transaction(func(tx *repository.Repositories) error {
		if err := tx.ContactRequest.Create(cr); err != nil {
			if errorx.IsConflict(err) {
				return ErrDuplicateRequest
			}
			return err
		}
		if text == "" {
			return nil
		}
		msg := model.Message{ContactRequestID: cr.ID, SenderID: userID, Content: text}
		if err := tx.Message.Create(&msg); err != nil {
			return err
		}
		cr.Messages = []model.Message{msg}
		return nil
	})
	if err != nil {
		return nil, err
	}

	cr.ToProfile = profile
	view := respond.NewContactRequestView(cr)
	s.publish(ctx, mq.EventContactRequestCreated, profile.UserID, cr.ID, view)
	return &view, nil
}

// participants 返回请求方和档案所有者
func participants(cr *model.ContactRequest) (string, string) {
	owner := ""
	if cr.ToProfile != nil {
		owner = cr.ToProfile.UserID
	}
	return cr.FromUserID, owner
}

// load 查找请求并确认 userID 是参与者，返回对方 id
func (s *Service) load(id, userID string) (*model.ContactRequest, string, error) {
	cr, err := s.repos.ContactRequest.FindByID(id)
	if err != nil {
		return nil, "", err
	}
	from, owner := participants(cr)
	switch userID {
	case from:
		return cr, owner, nil
	case owner:
		return cr, from, nil
	}
	return nil, "", ErrNotParticipant
}

// UpdateStatus 只有档案所有者能处理 pending 请求
// 单条件 UPDATE 保证已处理的请求不会被二次改写
func (s *Service) UpdateStatus(ctx context.Context, userID, id, status string) (*respond.ContactRequestView, error) {
	target := model.ContactStatus(status)
	if !target.Terminal() {
		return nil, ErrInvalidStatus
	}

	cr, err := s.repos.ContactRequest.FindByID(id)
	if err != nil {
		return nil, err
	}
	if _, owner := participants(cr); owner != userID {
		return nil, ErrNotProfileOwner
	}

	changed, err := s.repos.ContactRequest.UpdateStatusIfPending(id, target)
	if err != nil {
		return nil, err
	}
	if !changed {
		return nil, ErrAlreadyResolved
	}

	updated, err := s.repos.ContactRequest.FindByID(id)
	if err != nil {
		return nil, err
	}
	if requester, err := s.repos.User.FindByID(updated.FromUserID); err == nil {
		updated.FromUser = requester
	}
	view := respond.NewContactRequestView(updated)
	s.publish(ctx, mq.EventContactRequestStatus, updated.FromUserID, updated.ID, view)
	return &view, nil
}

// SendMessage 任一参与者在任何状态下都可以发消息，并刷新会话活跃时间
func (s *Service) SendMessage(ctx context.Context, userID, id, content string) (*model.Message, error) {
	text, err := cleanContent(content, false)
	if err != nil {
		return nil, err
	}
	cr, other, err := s.load(id, userID)
	if err != nil {
		return nil, err
	}

	msg := &model.Message{ContactRequestID: cr.ID, SenderID: userID, Content: text}
	err = s.repos.Transaction(func(tx *repository.Repositories) error {
		if err := tx.Message.Create(msg); err != nil {
			return err
		}
		return tx.ContactRequest.Touch(cr.ID)
	})
	if err != nil {
		return nil, err
	}
	s.publish(ctx, mq.EventMessageCreated, other, cr.ID, msg)
	return msg, nil
}

// GetConversation 返回会话消息（按时间升序），并把对方发来的消息标记为已读
func (s *Service) GetConversation(ctx context.Context, userID, id string) (*respond.ConversationRespond, error) {
	cr, _, err := s.load(id, userID)
	if err != nil {
		return nil, err
	}
	msgs, err := s.repos.Message.ListByRequest(cr.ID)
	if err != nil {
		return nil, err
	}
	if _, err := s.repos.Message.MarkRead(cr.ID, userID); err != nil {
		return nil, err
	}
	if msgs == nil {
		msgs = []model.Message{}
	}
	return &respond.ConversationRespond{
		Messages:       msgs,
		ContactRequest: respond.NewContactRequestView(cr),
	}, nil
}

// ListMine 我发出的和我收到的请求，各自按最近活跃倒序
func (s *Service) ListMine(ctx context.Context, userID, direction string) (*respond.ContactListRespond, error) {
	if direction == "" {
		direction = ListAll
	}
	rsp := &respond.ContactListRespond{}
	if direction == ListAll || direction == ListSent {
		sent, err := s.repos.ContactRequest.ListSent(userID)
		if err != nil {
			return nil, err
		}
		rsp.Sent = respond.NewContactRequestViews(sent)
	}
	if direction == ListAll || direction == ListReceived {
		received, err := s.repos.ContactRequest.ListReceived(userID)
		if err != nil {
			return nil, err
		}
		rsp.Received = respond.NewContactRequestViews(received)
	}
	return rsp, nil
}

// Delete 任一参与者在任何状态下都可以删除，消息一并删除
func (s *Service) Delete(ctx context.Context, userID, id string) error {
	cr, _, err := s.load(id, userID)
	if err != nil {
		return err
	}
	return s.repos.ContactRequest.Delete(cr.ID)
}

// publish 推送失败不影响业务结果
func (s *Service) publish(ctx context.Context, eventType, recipientID, requestID string, payload any) {
	if recipientID == "" {
		return
	}
	ev := mq.NewEvent(eventType, recipientID, requestID, payload)
	if err := s.publisher.Publish(ctx, ev); err != nil {
		zap.L().Warn("publish event failed",
			zap.String("type", eventType),
			zap.String("contact_request_id", requestID),
			zap.Error(err),
		)
	}
}
