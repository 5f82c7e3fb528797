package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"

	"docclassifier/logger"
	"docclassifier/ml"
)

// PredictRequest 预测请求, 缺省或为null的字段按空串处理
type PredictRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
}

// Text 返回送入模型的文本
func (r *PredictRequest) Text() string {
	var title, description string
	if r != nil && r.Title != nil {
		title = *r.Title
	}
	if r != nil && r.Description != nil {
		description = *r.Description
	}
	return ml.NormalizeText(title, description)
}

// PredictResponse 预测响应
type PredictResponse struct {
	Category     string  `json:"category"`
	Confidence   float64 `json:"confidence"`
	ModelVersion string  `json:"modelVersion"`
}

// Predictor 持有启动时加载的只读模型
type Predictor struct {
	model   ml.TextClassifier
	version string
}

// NewPredictor 创建预测器
func NewPredictor(model ml.TextClassifier, version string) *Predictor {
	return &Predictor{model: model, version: version}
}

// Predict 对单条请求做预测
func (p *Predictor) Predict(req *PredictRequest) (PredictResponse, error) {
	if p == nil || p.model == nil {
		return PredictResponse{}, ml.ErrNotFitted
	}
	text := req.Text()

	labels, err := p.model.Predict([]string{text})
	if err != nil {
		return PredictResponse{}, fmt.Errorf("predict: %w", err)
	}
	probas, err := p.model.PredictProba([]string{text})
	if err != nil {
		return PredictResponse{}, fmt.Errorf("predict proba: %w", err)
	}
	if len(labels) != 1 || len(probas) != 1 || len(probas[0]) == 0 {
		return PredictResponse{}, fmt.Errorf("%w: unexpected output shape", ml.ErrInconsistentModel)
	}

	confidence := probas[0][0]
	for _, v := range probas[0][1:] {
		if v > confidence {
			confidence = v
		}
	}
	return PredictResponse{
		Category:     labels[0],
		Confidence:   confidence,
		ModelVersion: p.version,
	}, nil
}

// RegisterPredictHandlers 注册预测路由
func RegisterPredictHandlers(mux *http.ServeMux, predictor *Predictor) {
	mux.HandleFunc("POST /predict", predictor.handlePredict)
}

func (p *Predictor) handlePredict(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	req, err := decodePredictRequest(r.Body)
	if err != nil {
		log.Debug("rejected predict request", zap.Error(err))
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	resp, err := p.Predict(req)
	if err != nil {
		log.Error("prediction failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "prediction failed")
		return
	}

	observePrediction(resp.Category, resp.Confidence)
	writeJSON(w, http.StatusOK, resp)
}

// decodePredictRequest 解析请求体; JSON null 等同于空对象
func decodePredictRequest(body io.Reader) (*PredictRequest, error) {
	raw, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if len(raw) == 0 {
		return nil, errors.New("request body is empty")
	}

	var req *PredictRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			if typeErr.Field != "" {
				return nil, fmt.Errorf("field %q must be a string", typeErr.Field)
			}
			return nil, errors.New("request body must be a JSON object")
		}
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	if req == nil {
		req = &PredictRequest{}
	}
	return req, nil
}
