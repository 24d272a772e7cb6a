// internal/catalog/suites.go
// Package: catalog
package catalog

var suites = map[Language]map[Kind][]Test{
	English: {
		Comprehensive: englishComprehensive,
		Quick:         englishQuick,
	},
	Polish: {
		Comprehensive: polishComprehensive,
		Quick:         polishQuick,
	},
}

var englishComprehensive = []Test{
	{
		Name:     "Introduction",
		Prompt:   "Introduce yourself briefly - who are you and what are your capabilities?",
		Category: "introduction",
		Options:  map[string]any{"temperature": 0.7, "num_predict": 500},
	},
	{
		Name:     "Programming Task - Python",
		Prompt:   "Write a Python function that finds all prime numbers less than n using the Sieve of Eratosthenes. Add comments and usage example.",
		Category: "programming",
		Options:  map[string]any{"temperature": 0.3, "num_predict": 2000, "top_p": 0.95},
	},
	{
		Name:     "Programming Task - JavaScript",
		Prompt:   "Write a JavaScript function that implements debounce with a 300ms delay. Show usage example with button click handling.",
		Category: "programming",
		Options:  map[string]any{"temperature": 0.3, "num_predict": 1500, "top_p": 0.95},
	},
	{
		Name:     "Sentiment Analysis",
		Prompt:   "Rate the sentiment of the following text on a scale from -5 (very negative) to +5 (very positive) and justify your assessment:\n\n'This product is a complete failure! It didn't work from day one, customer service ignores my messages, and getting a refund is a nightmare. Definitely do not recommend!'",
		Category: "sentiment_analysis",
		Options:  map[string]any{"temperature": 0.5, "num_predict": 300},
	},
	{
		Name:     "Logical Reasoning",
		Prompt:   "Solve this logic puzzle: I have 3 boxes - red, blue, and green. Each contains one ball: red, blue, or green. I know that: 1) the red ball is not in the red box, 2) the blue ball is not in the blue box, 3) the green ball is in the red box. Where is each ball?",
		Category: "logic",
		Options:  map[string]any{"temperature": 0.1, "num_predict": 200},
	},
	{
		Name:     "Text Summarization",
		Prompt:   "Summarize the following text in 2-3 sentences:\n\n'Artificial Intelligence (AI) is a field of computer science focused on creating systems capable of performing tasks that require human intelligence. This includes machine learning, natural language processing, image recognition, and decision-making. AI has wide applications - from voice assistants, through recommendation systems, to autonomous vehicles. AI development brings enormous possibilities, but also ethical and social challenges that require a responsible approach to implementing these technologies.'",
		Category: "summarization",
		Options:  map[string]any{"temperature": 0.6, "num_predict": 150},
	},
	{
		Name:     "Creative Writing",
		Prompt:   "Write a short story (3-4 paragraphs) about a robot experiencing emotions for the first time. The story should have a beginning, middle, and end.",
		Category: "creative_writing",
		Options:  map[string]any{"temperature": 0.8, "num_predict": 500},
	},
	{
		Name:     "Data Analysis - SQL",
		Prompt:   "Write an SQL query that finds the top 5 customers by total order value in the last year. Assume tables: customers(id, name), orders(id, customer_id, order_date, total_amount).",
		Category: "data_analysis",
		Options:  map[string]any{"temperature": 0.3, "num_predict": 300},
	},
	{
		Name:     "Mathematics",
		Prompt:   "Explain step by step how to solve the quadratic equation: 2x² - 7x + 3 = 0",
		Category: "mathematics",
		Options:  map[string]any{"temperature": 0.1, "num_predict": 400},
	},
	{
		Name:     "Translation and Cultural Context",
		Prompt:   "Translate to Polish and explain the cultural context: 'There's no place like home' - English saying.",
		Category: "translation",
		Options:  map[string]any{"temperature": 0.5, "num_predict": 300},
	},
	{
		Name:     "Multilingual Coding",
		Prompt:   "Write a 'Hello World' function in three languages: Python, JavaScript, and Java. Add comments explaining the differences.",
		Category: "programming",
		Options:  map[string]any{"temperature": 0.2, "num_predict": 500},
	},
	{
		Name:     "Mathematical Reasoning",
		Prompt:   "If a train travels at 80 km/h for 2.5 hours, what distance did it cover? Explain step by step.",
		Category: "mathematics",
		Options:  map[string]any{"temperature": 0.1, "num_predict": 200},
	},
	{
		Name:     "AI Ethics Analysis",
		Prompt:   "What are the main ethical challenges related to artificial intelligence development? List the 3 most important ones and briefly describe them.",
		Category: "ethics",
		Options:  map[string]any{"temperature": 0.6, "num_predict": 400},
	},
}

var englishQuick = []Test{
	{
		Name:     "Introduction",
		Prompt:   "Introduce yourself briefly - who are you and what are your capabilities?",
		Category: "introduction",
		Options:  map[string]any{"temperature": 0.7, "num_predict": 300},
	},
	{
		Name:     "Programming - Python",
		Prompt:   "Write a simple Python function that checks if a number is even.",
		Category: "programming",
		Options:  map[string]any{"temperature": 0.3, "num_predict": 200},
	},
	{
		Name:     "Sentiment Analysis",
		Prompt:   "Rate the sentiment of the text from -5 to +5: 'This product is a complete failure!'",
		Category: "sentiment_analysis",
		Options:  map[string]any{"temperature": 0.5, "num_predict": 100},
	},
	{
		Name:     "Mathematics",
		Prompt:   "Solve: 2x + 5 = 13",
		Category: "mathematics",
		Options:  map[string]any{"temperature": 0.1, "num_predict": 150},
	},
	{
		Name:     "Logic",
		Prompt:   "If all humans are mortal, and Socrates is human, is Socrates mortal?",
		Category: "logic",
		Options:  map[string]any{"temperature": 0.1, "num_predict": 100},
	},
	{
		Name:     "Creativity",
		Prompt:   "Create a short advertising slogan for a company producing eco-friendly water bottles.",
		Category: "creative_writing",
		Options:  map[string]any{"temperature": 0.8, "num_predict": 100},
	},
}

var polishComprehensive = []Test{
	{
		Name:     "Przedstawienie",
		Prompt:   "Przedstaw się krótko - kim jesteś i jakie masz możliwości?",
		Category: "introduction",
		Options:  map[string]any{"temperature": 0.7, "num_predict": 500},
	},
	{
		Name:     "Zadanie programistyczne - Python",
		Prompt:   "Napisz funkcję w Pythonie, która znajduje wszystkie liczby pierwsze mniejsze od n używając sita Eratostenesa. Dodaj komentarze i przykład użycia.",
		Category: "programming",
		Options:  map[string]any{"temperature": 0.3, "num_predict": 2000, "top_p": 0.95},
	},
	{
		Name:     "Zadanie programistyczne - JavaScript",
		Prompt:   "Napisz funkcję JavaScript, która implementuje debounce z delay 300ms. Pokaż przykład użycia z obsługą kliknięć przycisku.",
		Category: "programming",
		Options:  map[string]any{"temperature": 0.3, "num_predict": 1500, "top_p": 0.95},
	},
	{
		Name:     "Analiza sentymentu",
		Prompt:   "Oceń sentyment następującego tekstu na skali od -5 (bardzo negatywny) do +5 (bardzo pozytywny) i uzasadnij swoją ocenę:\n\n'Ten produkt to kompletna porażka! Nie działał od pierwszego dnia, obsługa klienta ignoruje moje wiadomości, a zwrot pieniędzy to koszmar. Zdecydowanie odradzam!'",
		Category: "sentiment_analysis",
		Options:  map[string]any{"temperature": 0.5, "num_predict": 300},
	},
	{
		Name:     "Logiczne rozumowanie",
		Prompt:   "Rozwiąż zagadkę logiczną: Mam 3 pudełka - czerwone, niebieskie i zielone. W każdym jest jedna piłka: czerwona, niebieska lub zielona. Wiem, że: 1) czerwona piłka nie jest w czerwonym pudełku, 2) niebieska piłka nie jest w niebieskim pudełku, 3) zielona piłka jest w czerwonym pudełku. Gdzie jest każda piłka?",
		Category: "logic",
		Options:  map[string]any{"temperature": 0.1, "num_predict": 200},
	},
	{
		Name:     "Streszczenie tekstu",
		Prompt:   "Streść w 2-3 zdaniach następujący tekst:\n\n'Sztuczna inteligencja (AI) to dziedzina informatyki zajmująca się tworzeniem systemów zdolnych do wykonywania zadań wymagających ludzkiej inteligencji. Obejmuje to uczenie maszynowe, przetwarzanie języka naturalnego, rozpoznawanie obrazów i podejmowanie decyzji. AI ma szerokie zastosowania - od asystentów głosowych, przez systemy rekomendacji, po autonomiczne pojazdy. Rozwój AI niesie ogromne możliwości, ale także wyzwania etyczne i społeczne, które wymagają odpowiedzialnego podejścia do implementacji tych technologii.'",
		Category: "summarization",
		Options:  map[string]any{"temperature": 0.6, "num_predict": 150},
	},
	{
		Name:     "Kreatywne pisanie",
		Prompt:   "Napisz krótką historię (3-4 akapity) o robocie, który po raz pierwszy doświadcza emocji. Historia powinna mieć początek, rozwinięcie i zakończenie.",
		Category: "creative_writing",
		Options:  map[string]any{"temperature": 0.8, "num_predict": 500},
	},
	{
		Name:     "Analiza danych - SQL",
		Prompt:   "Napisz zapytanie SQL, które znajdzie top 5 klientów według łącznej wartości zamówień w ostatnim roku. Załóż tabele: customers(id, name), orders(id, customer_id, order_date, total_amount).",
		Category: "data_analysis",
		Options:  map[string]any{"temperature": 0.3, "num_predict": 300},
	},
	{
		Name:     "Matematyka",
		Prompt:   "Wyjaśnij krok po kroku, jak rozwiązać równanie kwadratowe: 2x² - 7x + 3 = 0",
		Category: "mathematics",
		Options:  map[string]any{"temperature": 0.1, "num_predict": 400},
	},
	{
		Name:     "Tłumaczenie i kontekst kulturowy",
		Prompt:   "Przetłumacz na angielski i wyjaśnij kontekst kulturowy: 'Nie ma to jak u mamy' - polskie przysłowie.",
		Category: "translation",
		Options:  map[string]any{"temperature": 0.5, "num_predict": 300},
	},
	{
		Name:     "Kodowanie wielojęzyczne",
		Prompt:   "Napisz funkcję 'Hello World' w trzech językach: Python, JavaScript i Java. Dodaj komentarze wyjaśniające różnice.",
		Category: "programming",
		Options:  map[string]any{"temperature": 0.2, "num_predict": 500},
	},
	{
		Name:     "Rozumowanie matematyczne",
		Prompt:   "Jeśli pociąg jedzie z prędkością 80 km/h przez 2.5 godziny, jaką pokonał odległość? Wyjaśnij krok po kroku.",
		Category: "mathematics",
		Options:  map[string]any{"temperature": 0.1, "num_predict": 200},
	},
	{
		Name:     "Analiza etyczna AI",
		Prompt:   "Jakie są główne wyzwania etyczne związane z rozwojem sztucznej inteligencji? Wymień 3 najważniejsze i krótko je opisz.",
		Category: "ethics",
		Options:  map[string]any{"temperature": 0.6, "num_predict": 400},
	},
}

var polishQuick = []Test{
	{
		Name:     "Przedstawienie",
		Prompt:   "Przedstaw się krótko - kim jesteś i jakie masz możliwości?",
		Category: "introduction",
		Options:  map[string]any{"temperature": 0.7, "num_predict": 300},
	},
	{
		Name:     "Programowanie - Python",
		Prompt:   "Napisz prostą funkcję Python, która sprawdza czy liczba jest parzysta.",
		Category: "programming",
		Options:  map[string]any{"temperature": 0.3, "num_predict": 200},
	},
	{
		Name:     "Analiza sentymentu",
		Prompt:   "Oceń sentyment tekstu od -5 do +5: 'Ten produkt to kompletna porażka!'",
		Category: "sentiment_analysis",
		Options:  map[string]any{"temperature": 0.5, "num_predict": 100},
	},
	{
		Name:     "Matematyka",
		Prompt:   "Rozwiąż: 2x + 5 = 13",
		Category: "mathematics",
		Options:  map[string]any{"temperature": 0.1, "num_predict": 150},
	},
	{
		Name:     "Logika",
		Prompt:   "Jeśli wszyscy ludzie są śmiertelni, a Sokrates jest człowiekiem, to czy Sokrates jest śmiertelny?",
		Category: "logic",
		Options:  map[string]any{"temperature": 0.1, "num_predict": 100},
	},
	{
		Name:     "Kreatywność",
		Prompt:   "Wymyśl krótki slogan reklamowy dla firmy produkującej ekologiczne butelki na wodę.",
		Category: "creative_writing",
		Options:  map[string]any{"temperature": 0.8, "num_predict": 100},
	},
}
