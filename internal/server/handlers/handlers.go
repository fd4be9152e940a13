package handlers

import (
	"bytes"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/graysonhyc/class-schedule/internal/annotate"
	"github.com/graysonhyc/class-schedule/internal/config"
)

// 上传文件槽位
const (
	SlotTimetable = "timetable" // 每周课表（对照来源）
	SlotSchedule  = "schedule"  // 待标注日程
)

// Handlers API处理器
type Handlers struct {
	defaults annotate.Options

	// 上传文件缓存
	uploads   map[string]*uploadedFile
	uploadsMu sync.RWMutex

	// 标注结果缓存
	runs   map[string]*runOutput
	runsMu sync.RWMutex
}

type uploadedFile struct {
	FileName string
	Slot     string
	Bytes    []byte
	Sheets   []SheetInfo
}

type runOutput struct {
	Annotated []byte
	Report    []byte
	Result    annotate.Result
	CreatedAt time.Time
}

// SheetInfo 工作表概要
type SheetInfo struct {
	Name     string `json:"name"`
	RowCount int    `json:"rowCount"`
}

// NewHandlers 创建处理器
func NewHandlers(cfg *config.AppConfig) *Handlers {
	defaults := annotate.DefaultOptions()
	if cfg != nil {
		if cfg.Annotate.KeyScheme != "" {
			defaults.Scheme = annotate.KeyScheme(cfg.Annotate.KeyScheme)
		}
		if cfg.Annotate.Placement != "" {
			defaults.Placement = annotate.Placement(cfg.Annotate.Placement)
		}
		defaults.Strict = cfg.Annotate.Strict
	}
	return &Handlers{
		defaults: defaults,
		uploads:  make(map[string]*uploadedFile),
		runs:     make(map[string]*runOutput),
	}
}

// RegisterRoutes 注册 API 路由
func (h *Handlers) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/upload/:slot", h.Upload)
	router.POST("/annotate", h.Annotate)
	router.GET("/mapping/preview", h.MappingPreview)
	router.GET("/runs/:runId/annotated.xlsx", h.DownloadAnnotated)
	router.GET("/runs/:runId/unmatched.csv", h.DownloadReport)
}

// Response 通用响应
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

func errorResponse(c *gin.Context, code int, message string) {
	c.JSON(http.StatusOK, Response{
		Code:    code,
		Message: message,
	})
}

// Upload 上传 Excel 文件
// :slot 为 timetable（每周课表）或 schedule（待标注日程）
func (h *Handlers) Upload(c *gin.Context) {
	slot := c.Param("slot")
	if slot != SlotTimetable && slot != SlotSchedule {
		errorResponse(c, 1001, "未知的上传类型: "+slot)
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		errorResponse(c, 1001, "请上传文件")
		return
	}
	defer file.Close()

	// 检查文件大小 (10MB)
	if header.Size > 10*1024*1024 {
		errorResponse(c, 1003, "文件过大，最大支持10MB")
		return
	}

	// 检查文件格式
	ext := strings.ToLower(filepath.Ext(header.Filename))
	if ext != ".xlsx" {
		errorResponse(c, 1002, "仅支持 .xlsx 格式")
		return
	}

	content, err := io.ReadAll(file)
	if err != nil {
		errorResponse(c, 1002, "读取文件失败")
		return
	}

	sheets, err := listSheets(content)
	if err != nil {
		errorResponse(c, 1002, "文件解析失败: "+err.Error())
		return
	}

	fileID := uuid.New().String()
	h.uploadsMu.Lock()
	h.uploads[fileID] = &uploadedFile{
		FileName: header.Filename,
		Slot:     slot,
		Bytes:    content,
		Sheets:   sheets,
	}
	h.uploadsMu.Unlock()

	success(c, gin.H{
		"fileId":   fileID,
		"fileName": header.Filename,
		"fileSize": header.Size,
		"slot":     slot,
		"sheets":   sheets,
	})
}

// listSheets 校验字节可被打开并列出工作表概要
func listSheets(content []byte) ([]SheetInfo, error) {
	f, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	names := f.GetSheetList()
	sheets := make([]SheetInfo, 0, len(names))
	for _, name := range names {
		rows, err := f.GetRows(name)
		if err != nil {
			continue
		}
		sheets = append(sheets, SheetInfo{Name: name, RowCount: len(rows)})
	}
	return sheets, nil
}

func (h *Handlers) upload(fileID, slot string) (*uploadedFile, bool) {
	h.uploadsMu.RLock()
	defer h.uploadsMu.RUnlock()
	up, ok := h.uploads[fileID]
	if !ok || up.Slot != slot {
		return nil, false
	}
	return up, true
}

// annotateRequest 标注请求；键方案与写入方式缺省取配置默认值
type annotateRequest struct {
	TimetableID string `json:"timetableId"`
	ScheduleID  string `json:"scheduleId"`
	KeyScheme   string `json:"keyScheme"`
	Placement   string `json:"placement"`
}

// Annotate 执行一次标注
func (h *Handlers) Annotate(c *gin.Context) {
	var req annotateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, 1001, "参数错误")
		return
	}

	timetable, ok := h.upload(req.TimetableID, SlotTimetable)
	if !ok {
		errorResponse(c, 1004, "找不到已上传的课表文件")
		return
	}
	schedule, ok := h.upload(req.ScheduleID, SlotSchedule)
	if !ok {
		errorResponse(c, 1004, "找不到已上传的日程文件")
		return
	}

	opts := h.defaults
	if req.KeyScheme != "" {
		opts.Scheme = annotate.KeyScheme(req.KeyScheme)
	}
	if req.Placement != "" {
		opts.Placement = annotate.Placement(req.Placement)
	}
	if err := opts.Validate(); err != nil {
		errorResponse(c, 1001, err.Error())
		return
	}

	annotated, report, res, err := annotate.Run(timetable.Bytes, schedule.Bytes, opts)
	if err != nil {
		errorResponse(c, 2001, "标注失败: "+err.Error())
		return
	}

	runID := uuid.New().String()
	h.runsMu.Lock()
	h.runs[runID] = &runOutput{
		Annotated: annotated,
		Report:    report,
		Result:    res,
		CreatedAt: time.Now(),
	}
	h.runsMu.Unlock()

	success(c, gin.H{
		"runId":          runID,
		"cellsChanged":   res.CellsChanged,
		"unmatchedCount": len(res.Unmatched),
		"mappingSize":    res.MappingSize,
		"downloads": gin.H{
			"annotated": "/api/runs/" + runID + "/annotated.xlsx",
			"unmatched": "/api/runs/" + runID + "/unmatched.csv",
		},
	})
}

func (h *Handlers) run(runID string) (*runOutput, bool) {
	h.runsMu.RLock()
	defer h.runsMu.RUnlock()
	out, ok := h.runs[runID]
	return out, ok
}

// DownloadAnnotated 下载已标注的 Excel 文件
func (h *Handlers) DownloadAnnotated(c *gin.Context) {
	out, ok := h.run(c.Param("runId"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "下载链接已失效"})
		return
	}
	c.Header("Content-Disposition", `attachment; filename="schedule_annotated.xlsx"`)
	c.Data(http.StatusOK,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		out.Annotated)
}

// DownloadReport 下载未匹配清单 CSV
func (h *Handlers) DownloadReport(c *gin.Context) {
	out, ok := h.run(c.Param("runId"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "下载链接已失效"})
		return
	}
	c.Header("Content-Disposition", `attachment; filename="unmatched_keys.csv"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", out.Report)
}

// MappingPreview 预览对照表前若干条（默认 30）
func (h *Handlers) MappingPreview(c *gin.Context) {
	fileID := c.Query("fileId")
	timetable, ok := h.upload(fileID, SlotTimetable)
	if !ok {
		errorResponse(c, 1004, "找不到已上传的课表文件")
		return
	}

	limit := 30
	if v := c.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}

	opts := h.defaults
	if v := c.Query("keyScheme"); v != "" {
		opts.Scheme = annotate.KeyScheme(v)
	}
	if err := opts.Validate(); err != nil {
		errorResponse(c, 1001, err.Error())
		return
	}

	m, err := annotate.BuildMapping(timetable.Bytes, opts)
	if err != nil {
		errorResponse(c, 2001, "建立对照表失败: "+err.Error())
		return
	}

	success(c, gin.H{
		"total":   m.Len(),
		"entries": m.Sample(limit),
	})
}
