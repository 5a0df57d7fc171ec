package ai

import (
	"fmt"
	"strings"
)

func buildCardNormalizationPrompt(rawOCRText string) string {
	return fmt.Sprintf(`Extract and normalize sports card information from the OCR text below.

OCR Text:
%s

Extract these fields:
- year: Card production year (e.g., "1972", "1955")
- set: Brand/set name (e.g., "Topps", "Bowman")
- cardNumber: Card number (e.g., "#595", "#123")
- title: Card title or highlight text
- playerFirstName: Player's first name
- playerLastName: Player's last name
- gradingCompany: Grading company (e.g., "PSA", "SGC", "BGS")
- grade: Grade (e.g., "NM-MT 8", "VG-EX 4", "Mint 9")
- cert: Certification number if available
- caption: Additional caption text

Normalize abbreviations: VG→VG-EX, EX→EX-MT, NM→NM-MT

Return ONLY valid JSON with this structure:
{
  "normalized": {
    "year": "",
    "set": "",
    "cardNumber": "",
    "title": "",
    "playerFirstName": "",
    "playerLastName": "",
    "gradingCompany": "",
    "grade": "",
    "cert": "",
    "caption": ""
  },
  "confidenceByField": {
    "year": 0.0,
    "set": 0.0,
    "cardNumber": 0.0,
    "title": 0.0,
    "playerFirstName": 0.0,
    "playerLastName": 0.0,
    "gradingCompany": 0.0,
    "grade": 0.0,
    "cert": 0.0,
    "caption": 0.0
  }
}

Confidence scores: 0.5-0.7 if unclear/missing, 0.8-1.0 if clearly identified.`, rawOCRText)
}

func buildBookNormalizationPrompt(rawOCRText string) string {
	return fmt.Sprintf(`Extract bibliographic information for a used-book listing from the OCR text of a book title page below.

OCR Text:
%s

Extract these fields directly from the text:
- title: Main title (and subtitle if present)
- author: Author name(s) as printed
- illustrator: Illustrator if credited
- coverDesigner: Cover or jacket designer if credited
- publisherName: Publisher name
- placePublished: City/place of publication
- yearPublished: Year of publication (e.g., "1953")
- printISBN: Print ISBN if present
- eISBN: Electronic ISBN if present
- editionText: Edition statement (e.g., "First Edition")
- printingText: Printing statement (e.g., "Third Printing")
- volume: Volume number if part of a multi-volume work

Generate these fields from your knowledge of the work:
- description: 2-3 sentence summary of the book's subject and significance
- genre: Primary genre
- category: Bookseller category (e.g., "Fiction", "History", "Children's")
- retailPrice: Original retail price if printed on the page, otherwise ""

Leave these fields as empty strings (they receive defaults):
- format, condition, quantity, productType, language, jacketCondition, signedText

Return ONLY valid JSON:
{
  "normalized": { "title": "", "author": "", "illustrator": "", "coverDesigner": "", "publisherName": "", "placePublished": "", "yearPublished": "", "printISBN": "", "eISBN": "", "editionText": "", "printingText": "", "volume": "", "description": "", "genre": "", "category": "", "retailPrice": "", "format": "", "condition": "", "quantity": "", "productType": "", "language": "", "jacketCondition": "", "signedText": "" },
  "confidenceByField": { "title": 0.0, "author": 0.0, "illustrator": 0.0, "coverDesigner": 0.0, "publisherName": 0.0, "placePublished": 0.0, "yearPublished": 0.0, "printISBN": 0.0, "eISBN": 0.0, "editionText": 0.0, "printingText": 0.0, "volume": 0.0, "description": 0.0, "genre": 0.0, "category": 0.0, "retailPrice": 0.0 }
}

Confidence scores: 0.5-0.7 if unclear/missing, 0.8-1.0 if clearly identified.`, rawOCRText)
}

func buildCardListingPrompt(fields map[string]string) string {
	playerLastName := fields["playerLastName"]
	cardTitle := fields["title"]

	// Avoid "1961 Topps Mantle Mickey Mantle ..." when the card title already
	// names the player.
	titleContainsPlayerName := cardTitle != "" && playerLastName != "" &&
		strings.Contains(strings.ToLower(cardTitle), strings.ToLower(playerLastName))

	var titleInstructions string
	if titleContainsPlayerName {
		titleInstructions = fmt.Sprintf(`The card title %q already contains the player's last name %q.
Format: [year] [set] [card title as-is] #[cardNumber] [gradingCompany] [grade]
DO NOT include the player's name separately since it's already in the card title.`, cardTitle, playerLastName)
	} else {
		titleInstructions = `Format: [year] [set] [playerFirstName] [playerLastName] [card title/event if different] #[cardNumber] [gradingCompany] [grade]
Include special designations like: rookie, logo patch, jersey patch, signed, etc.`
	}

	return fmt.Sprintf(`Generate a title and description for this sports card.

Card Information:
- Year: %s
- Set: %s
- Card Number: %s
- Player: %s %s
- Grading Company: %s
- Grade: %s
- Card Title/Event: %s

Title Format Instructions:
%s

Description Format: [repeat title], [player name]. [brief description of why player is important]. [why this card is valuable].

Examples:
- "1972 Topps Nolan Ryan #595 PSA NM-MT 8"
- "1955 Topps Sandy Koufax Rookie #123 PSA VG-EX 4"

Return ONLY valid JSON:
{
  "autoTitle": "",
  "autoDescription": ""
}`,
		fields["year"], fields["set"], fields["cardNumber"],
		fields["playerFirstName"], fields["playerLastName"],
		fields["gradingCompany"], fields["grade"],
		valueOr(cardTitle, "None"),
		titleInstructions)
}

func buildBookListingPrompt(fields map[string]string, isbn string) string {
	priceInstructions := `Do not include a retailPrice field.`
	priceField := ""
	if isbn != "" {
		priceInstructions = fmt.Sprintf(`The book's ISBN is %s. Estimate its current retail price in USD as a plain number string (e.g., "24.95") in the retailPrice field. Leave retailPrice empty if you cannot estimate it.`, isbn)
		priceField = `,
  "retailPrice": ""`
	}

	return fmt.Sprintf(`Generate a listing title and description for this book.

Book Information:
- Title: %s
- Author: %s
- Publisher: %s
- Place Published: %s
- Year Published: %s
- Edition: %s
- Printing: %s
- Genre: %s

Title Format: [title] by [author], [edition if notable] ([publisherName], [yearPublished])

Description Requirements: at least two sentences explaining what the book is, why the work or author is significant, and anything about this edition that makes it collectible. Never leave the description empty.

%s

Return ONLY valid JSON:
{
  "autoTitle": "",
  "autoDescription": ""%s
}`,
		fields["title"], fields["author"], fields["publisherName"],
		fields["placePublished"], fields["yearPublished"],
		fields["editionText"], fields["printingText"], fields["genre"],
		priceInstructions, priceField)
}

func valueOr(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
