package uploader

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"
)

const (
	youtubePlatform          = "youtube"
	defaultYouTubeCategoryID = "27" // Education
)

var youtubeScopes = []string{
	youtube.YoutubeUploadScope,
	youtube.YoutubeScope,
}

// YouTubeAuth holds the OAuth2 state for the YouTube API. The token is
// cached on disk so one browser round trip lasts until revocation.
type YouTubeAuth struct {
	config    *oauth2.Config
	token     *oauth2.Token
	tokenPath string
}

func NewYouTubeAuth(clientID, clientSecret, tokenPath string) *YouTubeAuth {
	return &YouTubeAuth{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			Endpoint:     google.Endpoint,
			Scopes:       youtubeScopes,
			RedirectURL:  "http://localhost:8084/callback",
		},
		tokenPath: tokenPath,
	}
}

func (a *YouTubeAuth) GetAuthURL() string {
	return a.config.AuthCodeURL("state-token", oauth2.AccessTypeOffline)
}

func (a *YouTubeAuth) Exchange(ctx context.Context, code string) error {
	token, err := a.config.Exchange(ctx, code)
	if err != nil {
		return fmt.Errorf("exchange authorization code: %w", err)
	}
	a.token = token
	return a.SaveToken()
}

func (a *YouTubeAuth) LoadToken() error {
	data, err := os.ReadFile(a.tokenPath)
	if err != nil {
		return fmt.Errorf("read token file: %w", err)
	}
	var token oauth2.Token
	if err := json.Unmarshal(data, &token); err != nil {
		return fmt.Errorf("parse token file: %w", err)
	}
	a.token = &token
	return nil
}

func (a *YouTubeAuth) SaveToken() error {
	data, err := json.MarshalIndent(a.token, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal token: %w", err)
	}
	if err := os.WriteFile(a.tokenPath, data, 0600); err != nil {
		return fmt.Errorf("write token file: %w", err)
	}
	return nil
}

func (a *YouTubeAuth) IsAuthenticated() bool {
	if a.token == nil {
		if err := a.LoadToken(); err != nil {
			return false
		}
	}
	return a.token != nil && a.token.Valid()
}

func (a *YouTubeAuth) Client(ctx context.Context) (*http.Client, error) {
	if a.token == nil {
		if err := a.LoadToken(); err != nil {
			return nil, err
		}
	}
	return a.config.Client(ctx, a.token), nil
}

type YouTubeUploader struct {
	auth *YouTubeAuth
}

func NewYouTubeUploader(auth *YouTubeAuth) *YouTubeUploader {
	return &YouTubeUploader{auth: auth}
}

func (u *YouTubeUploader) Auth() *YouTubeAuth {
	return u.auth
}

func (u *YouTubeUploader) Platform() string {
	return youtubePlatform
}

func (u *YouTubeUploader) Upload(ctx context.Context, req UploadRequest) (*UploadResponse, error) {
	service, err := u.service(ctx)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(req.FilePath)
	if err != nil {
		return nil, fmt.Errorf("open video file: %w", err)
	}
	defer func() { _ = file.Close() }()

	categoryID := req.CategoryID
	if categoryID == "" {
		categoryID = defaultYouTubeCategoryID
	}

	video := &youtube.Video{
		Snippet: &youtube.VideoSnippet{
			Title:       req.Title,
			Description: req.Description,
			Tags:        req.Tags,
			CategoryId:  categoryID,
		},
		Status: &youtube.VideoStatus{
			PrivacyStatus: req.Privacy,
		},
	}

	call := service.Videos.Insert([]string{"snippet", "status"}, video)
	uploaded, err := call.Media(file).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("upload video: %w", err)
	}

	return &UploadResponse{
		ID:       uploaded.Id,
		URL:      fmt.Sprintf("https://youtube.com/watch?v=%s", uploaded.Id),
		Platform: youtubePlatform,
	}, nil
}

func (u *YouTubeUploader) SetPrivacy(ctx context.Context, videoID, privacy string) error {
	service, err := u.service(ctx)
	if err != nil {
		return err
	}

	video := &youtube.Video{
		Id: videoID,
		Status: &youtube.VideoStatus{
			PrivacyStatus: privacy,
		},
	}
	if _, err := service.Videos.Update([]string{"status"}, video).Context(ctx).Do(); err != nil {
		return fmt.Errorf("update video privacy: %w", err)
	}
	return nil
}

func (u *YouTubeUploader) service(ctx context.Context) (*youtube.Service, error) {
	httpClient, err := u.auth.Client(ctx)
	if err != nil {
		return nil, fmt.Errorf("get auth client: %w", err)
	}
	service, err := youtube.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("create youtube service: %w", err)
	}
	return service, nil
}
