package models

import (
	"time"

	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"

	"blog/internal/store"
	"blog/internal/timestamp"
	"blog/internal/uid"
)

// PasswordCost is the bcrypt cost used by SetPassword.
var PasswordCost = bcrypt.DefaultCost

// User owns any number of posts. Password holds a bcrypt hash.
type User struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Password string `json:"-"`
	CTime    string `json:"ctime"`
}

// Post belongs to exactly one user; deleting the user deletes the post.
type Post struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Body   string `json:"body"`
	UserID string `json:"user_id"`
	CTime  string `json:"ctime"`
}

var userTable = store.NewTable("user", []store.Column{
	{Name: "id", Type: "text"},
	{Name: "name", Type: "text"},
	{Name: "password", Type: "text"},
	{Name: "ctime", Type: "timestamp", Default: "CURRENT_TIMESTAMP"},
})

var postTable = store.NewTable("post", []store.Column{
	{Name: "id", Type: "text"},
	{Name: "title", Type: "text"},
	{Name: "body", Type: "text", Null: true},
	{Name: "user_id", Type: "text"},
	{Name: "ctime", Type: "timestamp", Default: "CURRENT_TIMESTAMP"},
}, `CONSTRAINT "fk_post_user" FOREIGN KEY ("user_id") REFERENCES "user" ("id") ON DELETE CASCADE DEFERRABLE INITIALLY DEFERRED`)

func (User) Table() *store.Table { return userTable }
func (u *User) Key() string { return u.ID }
func (u *User) Fields() []any {
	return []any{&u.ID, &u.Name, &u.Password, timestamp.Column(&u.CTime)}
}

func (Post) Table() *store.Table { return postTable }
func (p *Post) Key() string { return p.ID }
func (p *Post) Fields() []any {
	return []any{&p.ID, &p.Title, store.Text(&p.Body), &p.UserID, timestamp.Column(&p.CTime)}
}

// NewUser builds a user with a fresh id, a hashed password and ctime set
// from now.
func NewUser(name, password string, now time.Time) (*User, error) {
	u := &User{
		ID:    uid.New(),
		Name:  name,
		CTime: timestamp.Format(now),
	}
	if err := u.SetPassword(password); err != nil {
		return nil, err
	}
	return u, nil
}

// SetPassword replaces the stored hash with one for password.
func (u *User) SetPassword(password string) error {
	if password == "" {
		return errors.New("models: empty password")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), PasswordCost)
	if err != nil {
		return errors.Wrap(err, "models: hash password")
	}
	u.Password = string(hash)
	return nil
}

// CheckPassword reports whether password matches the stored hash.
func (u *User) CheckPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)) == nil
}

// NewPost builds a post owned by owner with a fresh id and ctime set from now.
func NewPost(owner store.Ref[User], title, body string, now time.Time) *Post {
	return &Post{
		ID:     uid.New(),
		Title:  title,
		Body:   body,
		UserID: owner.ID(),
		CTime:  timestamp.Format(now),
	}
}
