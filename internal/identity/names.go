package identity

// famousNames is the anonymization pool. Candidate documents are mapped to
// well-known public figures so that no real applicant name ever reaches
// logs or UI output.
var famousNames = []string{
	"Albert Einstein",
	"Marie Curie",
	"Leonardo da Vinci",
	"Isaac Newton",
	"Nikola Tesla",
	"Ada Lovelace",
	"Alan Turing",
	"Grace Hopper",
	"Stephen Hawking",
	"Carl Sagan",
	"Neil Armstrong",
	"Sally Ride",
	"Rosa Parks",
	"Martin Luther King Jr.",
	"Nelson Mandela",
	"Mahatma Gandhi",
	"Mother Teresa",
	"Malala Yousafzai",
	"Winston Churchill",
	"Abraham Lincoln",
	"George Washington",
	"Thomas Edison",
	"Alexander Graham Bell",
	"Wright Brothers",
	"Henry Ford",
	"Steve Jobs",
	"Bill Gates",
	"Elon Musk",
	"Mark Zuckerberg",
	"Jeff Bezos",
	"Oprah Winfrey",
	"Walt Disney",
	"Pablo Picasso",
	"Vincent van Gogh",
	"Frida Kahlo",
	"Claude Monet",
	"Wolfgang Mozart",
	"Ludwig van Beethoven",
	"Johann Bach",
	"Elvis Presley",
	"Michael Jackson",
	"The Beatles",
	"Bob Dylan",
	"Freddie Mercury",
	"Muhammad Ali",
	"Serena Williams",
	"Lionel Messi",
	"Michael Jordan",
	"Bruce Lee",
	"Jane Austen",
	"William Shakespeare",
	"Charles Dickens",
	"Mark Twain",
	"Ernest Hemingway",
	"Maya Angelou",
	"J.K. Rowling",
	"Charles Darwin",
	"Galileo Galilei",
	"Copernicus",
	"Johannes Kepler",
	"Benjamin Franklin",
	"Eleanor Roosevelt",
	"Cleopatra",
	"Julius Caesar",
	"Alexander the Great",
	"Napoleon Bonaparte",
	"Queen Elizabeth I",
	"Catherine the Great",
	"Confucius",
	"Buddha",
	"Socrates",
	"Plato",
	"Aristotle",
	"Pythagoras",
}

// PoolSize returns the number of names available before repetition starts.
func PoolSize() int { return len(famousNames) }
