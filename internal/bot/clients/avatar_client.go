package clients

import (
	"context"
	"fmt"

	"github.com/central-university-dev/go-wallpost/internal/domain/errors"
	"github.com/go-resty/resty/v2"
)

const telegramAPIBaseURL = "https://api.telegram.org"

// AvatarClient ходит в Bot API напрямую за фотографиями профиля.
// Отдельный HTTP клиент с ретраями и предохранителем: запрос аватара
// не должен ронять обработку команды.
type AvatarClient struct {
	client  *resty.Client
	token   string
	baseURL string
}

func NewAvatarClient(client *resty.Client, token string) *AvatarClient {
	return &AvatarClient{
		client:  client,
		token:   token,
		baseURL: telegramAPIBaseURL,
	}
}

// SetBaseURL устанавливает базовый URL для API Telegram (используется в тестах).
func (c *AvatarClient) SetBaseURL(url string) {
	c.baseURL = url
}

type userProfilePhotosResponse struct {
	OK     bool `json:"ok"`
	Result struct {
		TotalCount int `json:"total_count"`
		Photos     [][]struct {
			FileID string `json:"file_id"`
		} `json:"photos"`
	} `json:"result"`
}

type fileResponse struct {
	OK     bool `json:"ok"`
	Result struct {
		FilePath string `json:"file_path"`
	} `json:"result"`
}

// FetchAvatarURL возвращает прямую ссылку на самый крупный вариант последнего
// аватара пользователя или пустую строку, если аватара нет.
func (c *AvatarClient) FetchAvatarURL(ctx context.Context, userID int64) (string, error) {
	var photos userProfilePhotosResponse

	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParam("user_id", fmt.Sprintf("%d", userID)).
		SetQueryParam("limit", "1").
		SetResult(&photos).
		Get(fmt.Sprintf("%s/bot%s/getUserProfilePhotos", c.baseURL, c.token))
	if err != nil {
		return "", fmt.Errorf("ошибка при запросе фотографий профиля: %w", err)
	}

	if resp.StatusCode() != 200 || !photos.OK {
		return "", &errors.HTTPError{StatusCode: resp.StatusCode()}
	}

	if photos.Result.TotalCount == 0 || len(photos.Result.Photos) == 0 || len(photos.Result.Photos[0]) == 0 {
		return "", nil
	}

	sizes := photos.Result.Photos[0]
	fileID := sizes[len(sizes)-1].FileID

	var file fileResponse

	resp, err = c.client.R().
		SetContext(ctx).
		SetQueryParam("file_id", fileID).
		SetResult(&file).
		Get(fmt.Sprintf("%s/bot%s/getFile", c.baseURL, c.token))
	if err != nil {
		return "", fmt.Errorf("ошибка при запросе файла: %w", err)
	}

	if resp.StatusCode() != 200 || !file.OK {
		return "", &errors.HTTPError{StatusCode: resp.StatusCode()}
	}

	return fmt.Sprintf("%s/file/bot%s/%s", c.baseURL, c.token, file.Result.FilePath), nil
}
