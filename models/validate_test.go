package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestBookValidate(t *testing.T) {
	m := BookModel{}

	book, err := m.Validate(Book{Title: "  The Hobbit  ", Author: " J.R.R. Tolkien "})
	require.NoError(t, err)
	assert.Equal(t, "The Hobbit", book.Title)
	assert.Equal(t, "J.R.R. Tolkien", book.Author)
}

func TestBookValidate_TitleMissing(t *testing.T) {
	m := BookModel{}

	_, err := m.Validate(Book{Title: "   ", Author: "somebody"})
	assert.Equal(t, ErrBookTitleMissing, err)
}

func TestBorrowValidate(t *testing.T) {
	m := BorrowModel{}

	borrow, err := m.Validate(Borrow{
		From:  primitive.NewObjectID(),
		To:    primitive.NewObjectID(),
		Books: []primitive.ObjectID{primitive.NewObjectID()},
	})
	require.NoError(t, err)
	assert.Len(t, borrow.Books, 1)
}

func TestBorrowValidate_NoBooks(t *testing.T) {
	m := BorrowModel{}

	_, err := m.Validate(Borrow{From: primitive.NewObjectID(), To: primitive.NewObjectID()})
	assert.Equal(t, ErrBorrowNoBooks, err)
}

func TestMessageValidate(t *testing.T) {
	m := MessageModel{}

	content, err := m.Validate("  hello  ")
	require.NoError(t, err)
	assert.Equal(t, "hello", content)
}

func TestMessageValidate_Empty(t *testing.T) {
	m := MessageModel{}

	_, err := m.Validate(" \t ")
	assert.Equal(t, ErrMessageEmpty, err)
}
