// Package studio 是绘本创作会话的应用服务。
//
// 每个会话是一个显式的 entity.Session，所有修改都在该会话的锁内完成；
// 对后端的网络调用在锁外执行，调用前取快照，返回后再合并结果。
package studio

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"storybook-builder-api/internal/application/export"
	"storybook-builder-api/internal/application/reply"
	"storybook-builder-api/internal/application/sequencer"
	"storybook-builder-api/internal/domain/entity"
	"storybook-builder-api/internal/domain/repository"
	"storybook-builder-api/internal/domain/service"
	"storybook-builder-api/pkg/logger"
	"storybook-builder-api/pkg/metrics"
)

// Options 服务配置
type Options struct {
	ChatPlaceholder string
}

// Service 创作会话服务
type Service struct {
	store     repository.SessionStore
	assistant service.Assistant
	exporters *export.Registry
	opts      Options

	locks    *sessionLocks
	inflight *inflightGuard
}

// NewService 创建创作会话服务
func NewService(store repository.SessionStore, assistant service.Assistant, exporters *export.Registry, opts Options) *Service {
	return &Service{
		store:     store,
		assistant: assistant,
		exporters: exporters,
		opts:      opts,
		locks:     newSessionLocks(),
		inflight:  newInflightGuard(),
	}
}

// CreateSession 创建空会话
func (s *Service) CreateSession(ctx context.Context) (*entity.Session, error) {
	sess := entity.NewSession(uuid.NewString())
	if err := s.store.Create(ctx, sess); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	logger.Info(ctx, "session created", "session_id", sess.ID)
	return sess.Clone(), nil
}

// GetSession 读取会话
func (s *Service) GetSession(ctx context.Context, sessionID string) (*entity.Session, error) {
	return s.store.Get(ctx, sessionID)
}

// DeleteSession 结束会话，页面随之丢弃
func (s *Service) DeleteSession(ctx context.Context, sessionID string) error {
	unlock := s.locks.lock(sessionID)
	defer unlock()
	return s.store.Delete(ctx, sessionID)
}

// Pending 会话当前未完成的后端请求
func (s *Service) Pending(sessionID string) []Action {
	return s.inflight.list(sessionID)
}

// ChatPlaceholder 会话尚无对话时展示的提示语
func (s *Service) ChatPlaceholder() string {
	return s.opts.ChatPlaceholder
}

// mutate 通过存储的原子更新修改会话，返回修改后的副本。
//
// 进程内锁让同一会话的修改排队，跨实例的并发写入由存储的 Update 处理，
// fn 在冲突重试时可能被多次调用。
func (s *Service) mutate(ctx context.Context, sessionID string, fn func(sess *entity.Session) error) (*entity.Session, error) {
	unlock := s.locks.lock(sessionID)
	defer unlock()

	sess, err := s.store.Update(ctx, sessionID, func(sess *entity.Session) error {
		if err := fn(sess); err != nil {
			return err
		}
		sess.Touch()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return sess.Clone(), nil
}

// begin 占用 (会话, 操作) 的在途名额
func (s *Service) begin(sessionID string, action Action) (func(), error) {
	release, ok := s.inflight.acquire(sessionID, action)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrActionInFlight, action)
	}
	return release, nil
}

// SendMessage 发送一条用户消息并把完整历史发给后端
//
// 后端失败时对话记录追加失败标记轮次，该轮次之后不会再发往后端。
func (s *Service) SendMessage(ctx context.Context, sessionID, message string) (entity.ChatTurn, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return entity.ChatTurn{}, fmt.Errorf("%w: message", ErrMissingInput)
	}

	release, err := s.begin(sessionID, ActionChat)
	if err != nil {
		return entity.ChatTurn{}, err
	}
	defer release()

	var history []entity.ChatMessage
	if _, err := s.mutate(ctx, sessionID, func(sess *entity.Session) error {
		sess.Transcript = append(sess.Transcript, entity.NewChatTurn(entity.RoleUser, message))
		history = entity.History(sess.Transcript)
		return nil
	}); err != nil {
		return entity.ChatTurn{}, err
	}

	answer, callErr := s.assistant.Chat(service.WithWorkflow(ctx, service.WorkflowChat), history)

	turn := entity.NewChatTurn(entity.RoleAssistant, answer)
	if callErr != nil {
		logger.Error(ctx, "chat request failed", callErr, "session_id", sessionID)
		turn = entity.NewFailedTurn()
	}

	if _, err := s.mutate(ctx, sessionID, func(sess *entity.Session) error {
		sess.Transcript = append(sess.Transcript, turn)
		return nil
	}); err != nil {
		return entity.ChatTurn{}, err
	}

	if callErr != nil {
		return turn, fmt.Errorf("%w: %w", ErrChatFailed, callErr)
	}
	return turn, nil
}

// Transcript 返回对话记录
func (s *Service) Transcript(ctx context.Context, sessionID string) ([]entity.ChatTurn, error) {
	sess, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return sess.Transcript, nil
}

// InterpretTurn 解析一条助手回复并填入预览
//
// strict 模式只认 "Story Text:" / "Image Prompt:" 标签，缺失的字段为空，不会自动回退到 loose。
func (s *Service) InterpretTurn(ctx context.Context, sessionID string, index int, mode reply.Mode) (reply.ParsedReply, entity.Preview, error) {
	var parsed reply.ParsedReply
	sess, err := s.mutate(ctx, sessionID, func(sess *entity.Session) error {
		if index < 0 || index >= len(sess.Transcript) {
			return fmt.Errorf("%w: %d", ErrTurnNotFound, index)
		}
		turn := sess.Transcript[index]
		if !turn.Interpretable() {
			return ErrNotInterpretable
		}

		parsed = reply.Interpret(turn.Content, mode)
		sess.Preview.Text = parsed.Story
		sess.Preview.ImagePrompt = parsed.ImagePrompt
		return nil
	})
	if err != nil {
		return reply.ParsedReply{}, entity.Preview{}, err
	}

	metrics.ReplyInterpretTotal.WithLabelValues(string(mode), reply.Outcome(parsed)).Inc()
	return parsed, sess.Preview, nil
}

// Interpret 无状态解析任意文本，不读写会话
func (s *Service) Interpret(text string, mode reply.Mode) reply.ParsedReply {
	parsed := reply.Interpret(text, mode)
	metrics.ReplyInterpretTotal.WithLabelValues(string(mode), reply.Outcome(parsed)).Inc()
	return parsed
}

// SessionCount 存储中的会话数
func (s *Service) SessionCount(ctx context.Context) (int, error) {
	return s.store.Count(ctx)
}

// PreviewUpdate 预览字段的部分更新，nil 表示不修改
type PreviewUpdate struct {
	Text        *string
	ImagePrompt *string
}

// UpdatePreview 用户编辑预览
func (s *Service) UpdatePreview(ctx context.Context, sessionID string, in PreviewUpdate) (entity.Preview, error) {
	sess, err := s.mutate(ctx, sessionID, func(sess *entity.Session) error {
		if in.Text != nil {
			sess.Preview.Text = *in.Text
		}
		if in.ImagePrompt != nil {
			sess.Preview.ImagePrompt = *in.ImagePrompt
		}
		return nil
	})
	if err != nil {
		return entity.Preview{}, err
	}
	return sess.Preview, nil
}

// ClearPreview 清空预览
func (s *Service) ClearPreview(ctx context.Context, sessionID string) error {
	_, err := s.mutate(ctx, sessionID, func(sess *entity.Session) error {
		sess.Preview.Clear()
		return nil
	})
	return err
}

// CorrectGrammar 修正预览正文的语法与拼写
func (s *Service) CorrectGrammar(ctx context.Context, sessionID string) (entity.Preview, error) {
	return s.rewritePreview(ctx, sessionID, ActionGrammar, GrammarSystemPrompt, service.WorkflowGrammar, ErrGrammarFailed)
}

// ChangeStyle 以不同风格改写预览正文
func (s *Service) ChangeStyle(ctx context.Context, sessionID string) (entity.Preview, error) {
	return s.rewritePreview(ctx, sessionID, ActionStyle, StyleSystemPrompt, service.WorkflowStyle, ErrStyleFailed)
}

// rewritePreview 独立的单轮请求：系统提示词 + 预览正文，不携带对话历史
func (s *Service) rewritePreview(ctx context.Context, sessionID string, action Action, systemPrompt, workflow string, failure error) (entity.Preview, error) {
	sess, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return entity.Preview{}, err
	}
	text := strings.TrimSpace(sess.Preview.Text)
	if text == "" {
		return entity.Preview{}, fmt.Errorf("%w: preview text", ErrMissingInput)
	}

	release, err := s.begin(sessionID, action)
	if err != nil {
		return entity.Preview{}, err
	}
	defer release()

	rewritten, err := s.assistant.Chat(service.WithWorkflow(ctx, workflow), []entity.ChatMessage{
		{Role: entity.RoleSystem, Content: systemPrompt},
		{Role: entity.RoleUser, Content: text},
	})
	if err != nil {
		logger.Error(ctx, "preview rewrite failed", err, "session_id", sessionID, "action", string(action))
		return entity.Preview{}, fmt.Errorf("%w: %w", failure, err)
	}

	updated, err := s.mutate(ctx, sessionID, func(sess *entity.Session) error {
		sess.Preview.Text = rewritten
		return nil
	})
	if err != nil {
		return entity.Preview{}, err
	}
	return updated.Preview, nil
}

// ImageRequest 插画生成请求
type ImageRequest struct {
	// Prompt 为空时使用预览中的提示词
	Prompt string
	// OverlayText 要求把预览正文排入插画
	OverlayText bool
}

// GenerateImage 生成预览插画
//
// 已有页面时在提示词前加入一致性说明。失败时预览图被清空。
func (s *Service) GenerateImage(ctx context.Context, sessionID string, in ImageRequest) (entity.Preview, error) {
	release, err := s.begin(sessionID, ActionImage)
	if err != nil {
		return entity.Preview{}, err
	}
	defer release()

	var basePrompt, fullPrompt string
	if _, err := s.mutate(ctx, sessionID, func(sess *entity.Session) error {
		basePrompt = strings.TrimSpace(in.Prompt)
		if basePrompt == "" {
			basePrompt = strings.TrimSpace(sess.Preview.ImagePrompt)
		}
		if basePrompt == "" {
			return fmt.Errorf("%w: image prompt", ErrMissingInput)
		}

		sess.Preview.ImagePrompt = basePrompt
		sess.Preview.ImageURL = ""
		sess.Preview.ImageSourcePrompt = ""

		prompt := basePrompt
		if in.OverlayText && strings.TrimSpace(sess.Preview.Text) != "" {
			prompt = OverlayPrompt(basePrompt, strings.TrimSpace(sess.Preview.Text))
		}
		fullPrompt = WithConsistencyNote(ConsistencyNote(pagePrompts(sess.Pages), len(sess.Pages)), prompt)
		return nil
	}); err != nil {
		return entity.Preview{}, err
	}

	imageURL, callErr := s.assistant.GenerateImage(service.WithWorkflow(ctx, service.WorkflowImage), fullPrompt)
	if callErr == nil && strings.TrimSpace(imageURL) == "" {
		callErr = fmt.Errorf("%w: empty image url", service.ErrAssistantUnavailable)
	}

	sess, err := s.mutate(ctx, sessionID, func(sess *entity.Session) error {
		if callErr != nil {
			sess.Preview.ImageURL = ""
			sess.Preview.ImageSourcePrompt = ""
			return nil
		}
		sess.Preview.ImageURL = imageURL
		sess.Preview.ImageSourcePrompt = basePrompt
		return nil
	})
	if err != nil {
		return entity.Preview{}, err
	}

	if callErr != nil {
		logger.Error(ctx, "image generation failed", callErr, "session_id", sessionID)
		return sess.Preview, fmt.Errorf("%w: %w", ErrImageFailed, callErr)
	}
	return sess.Preview, nil
}

func pagePrompts(pages []entity.Page) []string {
	out := make([]string, 0, len(pages))
	for _, p := range pages {
		out = append(out, p.ImagePrompt)
	}
	return out
}

// Book 页面顺序与可视排列
type Book struct {
	Pages []entity.Page
	Board []entity.BoardElement
}

func bookOf(sess *entity.Session) Book {
	return Book{Pages: sess.Pages, Board: sess.Board}
}

// withSequencer 在会话锁内操作页面序列，结束后把顺序与排列写回会话
func (s *Service) withSequencer(ctx context.Context, sessionID string, fn func(seq *sequencer.Sequencer) error) (*entity.Session, error) {
	return s.mutate(ctx, sessionID, func(sess *entity.Session) error {
		seq := sequencer.New(sess.Pages, sequencer.NewMemoryBoard(sess.Board))
		if err := fn(seq); err != nil {
			return err
		}
		sess.Pages = seq.CanonicalOrder()
		sess.Board = seq.Board().Elements()
		return nil
	})
}

// SavePage 把预览确认为新页面，追加到末尾并登记可视元素，随后清空预览
func (s *Service) SavePage(ctx context.Context, sessionID string) (entity.Page, Book, error) {
	var saved entity.Page
	sess, err := s.mutate(ctx, sessionID, func(sess *entity.Session) error {
		prompt := sess.Preview.ImageSourcePrompt
		if prompt == "" {
			prompt = sess.Preview.ImagePrompt
		}
		page, err := sequencer.NewPage(sess.Preview.ImageURL, sess.Preview.Text, prompt)
		if err != nil {
			return err
		}

		seq := sequencer.New(sess.Pages, sequencer.NewMemoryBoard(sess.Board))
		if _, err := seq.Append(page); err != nil {
			return err
		}
		seq.Sync()

		sess.Pages = seq.CanonicalOrder()
		sess.Board = seq.Board().Elements()
		sess.Preview.Clear()
		saved = page
		return nil
	})
	if err != nil {
		return entity.Page{}, Book{}, err
	}

	metrics.PagesSavedTotal.Inc()
	logger.Info(ctx, "page saved", "session_id", sessionID, "page_id", saved.ID, "pages", len(sess.Pages))
	return saved, bookOf(sess), nil
}

// ListPages 返回规范顺序与可视排列
func (s *Service) ListPages(ctx context.Context, sessionID string) (Book, error) {
	sess, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return Book{}, err
	}
	return bookOf(sess), nil
}

// BeginDrag 标记正在拖拽的页面
func (s *Service) BeginDrag(ctx context.Context, sessionID, pageID string) (Book, error) {
	sess, err := s.withSequencer(ctx, sessionID, func(seq *sequencer.Sequencer) error {
		if !seq.BeginDrag(pageID) {
			return fmt.Errorf("%w: %s", ErrPageNotFound, pageID)
		}
		return nil
	})
	if err != nil {
		return Book{}, err
	}
	return bookOf(sess), nil
}

// EndDrag 清除拖拽标记
func (s *Service) EndDrag(ctx context.Context, sessionID string) (Book, error) {
	sess, err := s.withSequencer(ctx, sessionID, func(seq *sequencer.Sequencer) error {
		seq.EndDrag()
		return nil
	})
	if err != nil {
		return Book{}, err
	}
	return bookOf(sess), nil
}

// DropRequest 一次完整的放置
type DropRequest struct {
	// DraggedID 非空时先开始拖拽该页面；为空时使用已标记的拖拽中页面
	DraggedID string
	Target    sequencer.DropTarget
}

// DropPage 按指针位置放置页面并重新推导顺序，结束后清除拖拽标记
//
// 页面 id 无法解析时不做修改，返回 moved=false。
func (s *Service) DropPage(ctx context.Context, sessionID string, in DropRequest) (Book, bool, error) {
	var moved bool
	sess, err := s.withSequencer(ctx, sessionID, func(seq *sequencer.Sequencer) error {
		moved = false
		if in.DraggedID != "" && !seq.BeginDrag(in.DraggedID) {
			return nil
		}
		_ = seq.DragOver()
		_, moved = seq.Drop(in.Target)
		seq.EndDrag()
		return nil
	})
	if err != nil {
		return Book{}, false, err
	}
	recordMove(moved)
	return bookOf(sess), moved, nil
}

// MovePage 把页面移到目标之前或之后，targetID 为空时移到末尾
func (s *Service) MovePage(ctx context.Context, sessionID, draggedID, targetID string, insertBefore bool) (Book, bool, error) {
	var moved bool
	sess, err := s.withSequencer(ctx, sessionID, func(seq *sequencer.Sequencer) error {
		_, moved = seq.Reorder(draggedID, targetID, insertBefore)
		return nil
	})
	if err != nil {
		return Book{}, false, err
	}
	recordMove(moved)
	return bookOf(sess), moved, nil
}

// ReorderPages 按完整 id 列表重排
func (s *Service) ReorderPages(ctx context.Context, sessionID string, pageIDs []string) (Book, error) {
	sess, err := s.withSequencer(ctx, sessionID, func(seq *sequencer.Sequencer) error {
		_, err := seq.Arrange(pageIDs)
		return err
	})
	if err != nil {
		return Book{}, err
	}
	recordMove(true)
	return bookOf(sess), nil
}

// RemovePage 删除页面
func (s *Service) RemovePage(ctx context.Context, sessionID, pageID string) (Book, error) {
	sess, err := s.withSequencer(ctx, sessionID, func(seq *sequencer.Sequencer) error {
		if _, ok := seq.Remove(pageID); !ok {
			return fmt.Errorf("%w: %s", ErrPageNotFound, pageID)
		}
		return nil
	})
	if err != nil {
		return Book{}, err
	}
	return bookOf(sess), nil
}

func recordMove(moved bool) {
	result := "noop"
	if moved {
		result = "moved"
	}
	metrics.PageMovesTotal.WithLabelValues(result).Inc()
}

// Export 按规范顺序导出
func (s *Service) Export(ctx context.Context, sessionID string, format export.Format) (*export.Document, error) {
	sess, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	doc, err := s.exporters.Render(ctx, format, sess.Pages)
	status := "success"
	if err != nil {
		status = "error"
	}
	metrics.ExportTotal.WithLabelValues(string(format), status).Inc()
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "book exported", "session_id", sessionID, "format", string(format), "pages", len(sess.Pages), "bytes", len(doc.Body))
	return doc, nil
}
