package handler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/h2non/filetype"
	"go.uber.org/zap"

	"workguard/api/response"
	"workguard/service"
	"workguard/types"
)

// MaxUploadSize 单个 PDF 上限
const MaxUploadSize = 32 << 20

type Analyzer interface {
	Analyze(ctx context.Context, pdfPath string) *types.AnalysisResult
	AnalyzeText(ctx context.Context, text string) *types.AnalysisResult
}

type Reports interface {
	Save(ctx context.Context, fileName string, result *types.AnalysisResult) (*types.ContractRecord, error)
	Get(ctx context.Context, docID string) (*types.ContractRecord, error)
	List(ctx context.Context, limit int) ([]types.ContractRecord, error)
	Delete(ctx context.Context, docID string) error
	Search(ctx context.Context, req types.SearchRequest) ([]types.FindingHit, error)
}

type ContractHandler struct {
	analyzer  Analyzer
	reports   Reports
	uploadDir string
	log       *zap.Logger
}

// NewContractHandler reports may be nil when no database is configured.
func NewContractHandler(analyzer Analyzer, reports Reports, uploadDir string, log *zap.Logger) *ContractHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &ContractHandler{
		analyzer:  analyzer,
		reports:   reports,
		uploadDir: uploadDir,
		log:       log.Named("handler"),
	}
}

// AnalyzeResponse 上传分析接口的返回，DocID 为空表示未持久化
type AnalyzeResponse struct {
	DocID    string                `json:"doc_id,omitempty"`
	FileName string                `json:"file_name"`
	Result   *types.AnalysisResult `json:"result"`
}

type analyzeTextRequest struct {
	Text string `json:"text" binding:"required"`
}

// Analyze 上传合同并分析
func (h *ContractHandler) Analyze(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.FailWithStatus(c, http.StatusBadRequest, "未接收到文件，请检查参数名是否为 'file'")
		return
	}
	if !strings.EqualFold(filepath.Ext(fileHeader.Filename), ".pdf") {
		response.FailWithStatus(c, http.StatusBadRequest, "only PDF files are supported")
		return
	}
	if fileHeader.Size > MaxUploadSize {
		response.FailWithStatus(c, http.StatusRequestEntityTooLarge, "file too large")
		return
	}

	name := filepath.Base(fileHeader.Filename)
	dst := filepath.Join(h.uploadDir, uuid.NewString()+"_"+name)
	if err := c.SaveUploadedFile(fileHeader, dst); err != nil {
		h.log.Error("save upload failed", zap.String("file", name), zap.Error(err))
		response.Fail(c, "文件上传失败")
		return
	}
	// 上传文件只在本次分析期间保留
	defer func() {
		if err := os.Remove(dst); err != nil && !os.IsNotExist(err) {
			h.log.Warn("remove upload failed", zap.String("path", dst), zap.Error(err))
		}
	}()
	if ok, err := isPDF(dst); err != nil || !ok {
		response.FailWithStatus(c, http.StatusBadRequest, "file is not a valid PDF")
		return
	}
	h.log.Info("upload received", zap.String("file", name), zap.Int64("size", fileHeader.Size))

	h.respond(c, name, h.analyzer.Analyze(c.Request.Context(), dst))
}

// AnalyzeText 直接分析已提取的合同文本
func (h *ContractHandler) AnalyzeText(c *gin.Context) {
	var req analyzeTextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.FailWithStatus(c, http.StatusBadRequest, "参数错误: text 不能为空")
		return
	}
	h.respond(c, "", h.analyzer.AnalyzeText(c.Request.Context(), req.Text))
}

func (h *ContractHandler) respond(c *gin.Context, fileName string, result *types.AnalysisResult) {
	if !result.OK() {
		response.Fail(c, result.Error)
		return
	}

	resp := AnalyzeResponse{FileName: fileName, Result: result}
	if h.reports != nil && fileName != "" {
		rec, err := h.reports.Save(c.Request.Context(), fileName, result)
		if err != nil {
			// 分析结果仍然返回，只是不落库
			h.log.Warn("persist analysis failed", zap.String("file", fileName), zap.Error(err))
		} else {
			resp.DocID = rec.DocID
		}
	}
	response.Success(c, resp)
}

func (h *ContractHandler) Get(c *gin.Context) {
	if h.reports == nil {
		response.FailWithStatus(c, http.StatusServiceUnavailable, "storage is not configured")
		return
	}
	rec, err := h.reports.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, rec)
}

func (h *ContractHandler) List(c *gin.Context) {
	if h.reports == nil {
		response.FailWithStatus(c, http.StatusServiceUnavailable, "storage is not configured")
		return
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(service.DefaultListLimit)))
	if err != nil {
		response.FailWithStatus(c, http.StatusBadRequest, "参数错误: limit 必须是整数")
		return
	}
	recs, err := h.reports.List(c.Request.Context(), limit)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, recs)
}

func (h *ContractHandler) Delete(c *gin.Context) {
	if h.reports == nil {
		response.FailWithStatus(c, http.StatusServiceUnavailable, "storage is not configured")
		return
	}
	id := c.Param("id")
	if err := h.reports.Delete(c.Request.Context(), id); err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, gin.H{"doc_id": id})
}

func (h *ContractHandler) SearchRisks(c *gin.Context) {
	var req types.SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.FailWithStatus(c, http.StatusBadRequest, "参数错误: query 不能为空")
		return
	}
	if h.reports == nil {
		response.FailWithStatus(c, http.StatusServiceUnavailable, "storage is not configured")
		return
	}
	hits, err := h.reports.Search(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, hits)
}

func Healthz(c *gin.Context) {
	response.Success(c, gin.H{"status": "ok"})
}

func (h *ContractHandler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		response.FailWithStatus(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrSearchDisabled):
		response.FailWithStatus(c, http.StatusServiceUnavailable, err.Error())
	default:
		h.log.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
		response.Fail(c, fmt.Sprintf("internal error: %v", err))
	}
}

// isPDF 按文件头判断，不信任扩展名
func isPDF(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer f.Close()

	buf := make([]byte, 261)
	n, err := io.ReadFull(f, buf)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) {
		return false, err
	}
	return filetype.Is(buf[:n], "pdf"), nil
}
